package cmd

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medals/config"
)

func TestConfigureLogging(t *testing.T) {
	original := log.GetLevel()
	t.Cleanup(func() {
		log.SetLevel(original)
		log.SetFormatter(&log.TextFormatter{})
	})

	cfg := config.NewTestConfig()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"
	require.NoError(t, configureLogging(cfg))
	assert.Equal(t, log.WarnLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	cfg.LogLevel = "chatty"
	assert.Error(t, configureLogging(cfg))
}

func TestCommandTree(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "distribute", "raffle", "aggregate", "balance"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub := make(map[string]bool)
	for _, c := range migrateCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.True(t, sub["up"] && sub["down"] && sub["status"])
}

func TestRequiredFlags(t *testing.T) {
	for _, flag := range []string{"event", "medal", "actor"} {
		f := distributeCmd.Flags().Lookup(flag)
		require.NotNil(t, f, flag)
		assert.Equal(t, []string{"true"}, f.Annotations["cobra_annotation_bash_completion_one_required_flag"], flag)
	}
	assert.Equal(t, "0", aggregateCmd.Flags().Lookup("min-score").DefValue)
}
