package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"crypto-tracker/internal/config"
	"crypto-tracker/internal/stream"
)

func executeCommand(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	root := NewRootCmd(cfg, zerolog.Nop())

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Crypto Tracker v"+Version)

	out, err = executeCommand(t, nil, "version", "--json")
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, Version, v["version"])
}

func TestRecommendCommand(t *testing.T) {
	out, err := executeCommand(t, nil, "recommend", "--json")
	require.NoError(t, err)

	var result RecommendResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	var symbols []string
	for _, rec := range result.Recommendations {
		symbols = append(symbols, rec.Symbol)
	}
	assert.Equal(t, []string{"BTC", "ADA", "ETH", "LINK", "AVAX"}, symbols)

	total := 0
	for _, slot := range result.Allocation {
		total += slot.Percent
	}
	assert.Equal(t, 100, total)
}

func TestRecommendCommand_Normalized(t *testing.T) {
	cfg := config.Default()
	cfg.Scoring.NormalizeUnits = true

	out, err := executeCommand(t, cfg, "recommend", "--json")
	require.NoError(t, err)

	var result RecommendResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Recommendations, 5)
	assert.Equal(t, "BTC", result.Recommendations[0].Symbol)
	assert.Equal(t, "ETH", result.Recommendations[1].Symbol)
}

func TestRecommendCommand_Text(t *testing.T) {
	out, err := executeCommand(t, nil, "recommend")
	require.NoError(t, err)
	assert.Contains(t, out, "Top Picks")
	assert.Contains(t, out, "Suggested Allocation")
	assert.Contains(t, out, "35%")
}

func TestMarketCommand_YAML(t *testing.T) {
	out, err := executeCommand(t, nil, "market", "--yaml")
	require.NoError(t, err)

	var entries []struct {
		Symbol string `yaml:"symbol"`
		Record struct {
			Price  float64 `yaml:"price"`
			Volume string  `yaml:"volume"`
		} `yaml:"record"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 10)
	assert.Equal(t, "BTC", entries[0].Symbol)
	assert.Equal(t, "23.4B", entries[0].Record.Volume)
}

func TestNewsCommand(t *testing.T) {
	out, err := executeCommand(t, nil, "news", "--json")
	require.NoError(t, err)

	var result NewsResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Items, 5)
	assert.Equal(t, "positive", string(result.Mood))

	out, err = executeCommand(t, nil, "news", "--impact", "negative", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Items, 1)
}

func TestRunCommand_JSON(t *testing.T) {
	out, err := executeCommand(t, nil, "run", "--ticks", "3", "--interval", "1ms", "--json")
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var seqs []uint64
	for {
		var u stream.Update
		err := dec.Decode(&u)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		seqs = append(seqs, u.Seq)
		assert.Equal(t, "BTC", u.Selected)
		require.NotNil(t, u.Point)
	}
	assert.Equal(t, []uint64{1, 2, 3}, seqs)
}

func TestRunCommand_YAML(t *testing.T) {
	out, err := executeCommand(t, nil, "run", "--ticks", "2", "--interval", "1ms", "--yaml", "--select", "eth")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "---\n"))
	assert.Contains(t, out, "selected: ETH")
}

func TestRunCommand_TextWithHoldings(t *testing.T) {
	out, err := executeCommand(t, nil, "run", "-n", "1", "-i", "1ms", "--hold", "BTC:2", "--alert", "ETH:100000")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulating every 1ms")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "top: ")
	assert.Contains(t, out, "Portfolio")
	assert.Contains(t, out, "86501.00")
}

func TestRunCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative ticks", []string{"run", "--ticks", "-1"}},
		{"unknown select", []string{"run", "-n", "1", "--select", "DOGE"}},
		{"malformed alert", []string{"run", "-n", "1", "--alert", "BTC"}},
		{"negative alert", []string{"run", "-n", "1", "--alert", "BTC:-5"}},
		{"unknown holding", []string{"run", "-n", "1", "--hold", "DOGE:1"}},
		{"zero holding", []string{"run", "-n", "1", "--hold", "BTC:0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, nil, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, nil, "config", "path", "--config", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), strings.TrimSpace(out))

	out, err = executeCommand(t, nil, "config", "validate", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	out, err = executeCommand(t, nil, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Default Symbol: BTC")
	assert.Contains(t, out, "Seed: built-in")
}

func TestConfigFlag_RebuildsLogger(t *testing.T) {
	dir := t.TempDir()
	body := "[logging]\nlevel = \"debug\"\nconsole = true\nfile = false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0644))

	var logs bytes.Buffer
	app := &App{Config: config.Default(), Logger: zerolog.Nop(), LogOutput: &logs}
	root := newRootCmd(app)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"run", "--ticks", "1", "--interval", "1ms", "--json", "--config", dir})

	require.NoError(t, root.Execute())
	assert.Equal(t, dir, app.ConfigDir)
	assert.Contains(t, logs.String(), "Tick completed")
}

func TestConfigDir_FromEnvWhenNotPreloaded(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRACKER_CONFIG_DIR", dir)

	app := &App{Logger: zerolog.Nop(), LogOutput: io.Discard}
	root := newRootCmd(app)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"config", "path"})

	require.NoError(t, root.Execute())
	assert.Equal(t, filepath.Join(dir, "config.toml"), strings.TrimSpace(buf.String()))
	require.NotNil(t, app.Config)
	assert.FileExists(t, filepath.Join(dir, "config.toml"))
}

func TestConfigValidate_Invalid(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.ChangeMode = "random"

	out, err := executeCommand(t, cfg, "config", "validate", "--json")
	require.Error(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, false, result["valid"])
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		pair    string
		symbol  string
		value   float64
		wantErr bool
	}{
		{"BTC:2", "BTC", 2, false},
		{"eth:2700.5", "ETH", 2700.5, false},
		{"BTC", "", 0, true},
		{":5", "", 0, true},
		{"BTC:abc", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.pair, func(t *testing.T) {
			symbol, value, err := parsePair(tt.pair)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.symbol, symbol)
			assert.Equal(t, tt.value, value)
		})
	}
}
