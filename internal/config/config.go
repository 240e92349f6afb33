package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ModelConfig holds the training defaults shared by every experiment.
type ModelConfig struct {
	Trainer      string  `yaml:"trainer"`
	Architecture string  `yaml:"architecture"`
	MinCount     int     `yaml:"min_count"`
	Epochs       int     `yaml:"epochs"`
	Window       int     `yaml:"window"`
	Negative     int     `yaml:"negative"`
	Alpha        float64 `yaml:"alpha"`
	MinAlpha     float64 `yaml:"min_alpha"`
	Seed         uint64  `yaml:"seed"`
}

// EvaluationConfig configures scoring.
type EvaluationConfig struct {
	SuccessThreshold  float64 `yaml:"success_threshold"`
	SignificanceLevel float64 `yaml:"significance_level"`
	Welch             bool    `yaml:"welch"`
	TrainPairings     string  `yaml:"train_pairings"`
	TestPairings      string  `yaml:"test_pairings"`
}

// StoreConfig selects and configures the dataset store.
type StoreConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	SummaryCSV string `yaml:"summary_csv"`
	ImageDir   string `yaml:"image_dir"`
	SavePlots  bool   `yaml:"save_plots"`
}

// ExperimentConfig is one training/evaluation run.
type ExperimentConfig struct {
	Name        string `yaml:"name"`
	Corpus      string `yaml:"corpus"`
	CorpusLabel string `yaml:"corpus_label"`
	VectorSize  int    `yaml:"vector_size"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LogLevel    string             `yaml:"log_level"`
	Store       StoreConfig        `yaml:"store"`
	Model       ModelConfig        `yaml:"model"`
	Evaluation  EvaluationConfig   `yaml:"evaluation"`
	Output      OutputConfig       `yaml:"output"`
	Experiments []ExperimentConfig `yaml:"experiments"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./docvec.yaml first, then ~/.config/docvec/config.yaml.
// If neither exists, it writes defaults to ~/.config/docvec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "docvec.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the experiment list and enumerated fields.
func (c *AppConfig) Validate() error {
	switch c.Model.Trainer {
	case "doc2vec", "tfidf":
	default:
		return fmt.Errorf("unknown trainer %q", c.Model.Trainer)
	}
	switch c.Model.Architecture {
	case "dm", "dbow":
	default:
		return fmt.Errorf("unknown architecture %q", c.Model.Architecture)
	}
	switch c.Store.Type {
	case "dir", "badger":
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}
	if len(c.Experiments) == 0 {
		return errors.New("no experiments configured")
	}
	for i, e := range c.Experiments {
		if e.Name == "" || e.Corpus == "" {
			return fmt.Errorf("experiment %d: name and corpus are required", i)
		}
		if c.Model.Trainer == "doc2vec" && e.VectorSize <= 0 {
			return fmt.Errorf("experiment %s: vector_size must be positive", e.Name)
		}
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docvec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		LogLevel: "info",
		Store:    StoreConfig{Type: "dir", Path: "../data"},
		Model: ModelConfig{
			Trainer: "doc2vec", Architecture: "dm", MinCount: 2, Epochs: 100,
			Window: 5, Negative: 5, Alpha: 0.025, MinAlpha: 0.0001,
		},
		Evaluation: EvaluationConfig{
			SuccessThreshold: 0.95, SignificanceLevel: 0.01,
			TrainPairings: "train_pairings", TestPairings: "test_pairings",
		},
		Output:      OutputConfig{SummaryCSV: "../data/eval_df.csv", ImageDir: "../images", SavePlots: true},
		Experiments: defaultExperiments(),
	}
	return cfg
}

// defaultExperiments is every reference corpus variant at 50, 100 and 200 dimensions.
func defaultExperiments() []ExperimentConfig {
	variants := []struct{ prefix, corpus, label string }{
		{"r", "ref_train_pcorpus", "r_tr"},
		{"t", "tate_train_pcorpus", "t_tr"},
		{"rt", "rt_train_pcorpus", "rt_tr"},
		{"rt_tagged", "rt_tagged_train_pcorpus", "rt_tagged_tr"},
	}
	var out []ExperimentConfig
	for _, v := range variants {
		for _, size := range []int{50, 100, 200} {
			out = append(out, ExperimentConfig{
				Name:        fmt.Sprintf("%s_%d", v.prefix, size),
				Corpus:      v.corpus,
				CorpusLabel: v.label,
				VectorSize:  size,
			})
		}
	}
	return out
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = def.Store.Type
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Model.Trainer == "" {
		cfg.Model.Trainer = def.Model.Trainer
	}
	if cfg.Model.Architecture == "" {
		cfg.Model.Architecture = def.Model.Architecture
	}
	if cfg.Model.MinCount == 0 {
		cfg.Model.MinCount = def.Model.MinCount
	}
	if cfg.Model.Epochs == 0 {
		cfg.Model.Epochs = def.Model.Epochs
	}
	if cfg.Model.Window == 0 {
		cfg.Model.Window = def.Model.Window
	}
	if cfg.Model.Negative == 0 {
		cfg.Model.Negative = def.Model.Negative
	}
	if cfg.Model.Alpha == 0 {
		cfg.Model.Alpha = def.Model.Alpha
	}
	if cfg.Model.MinAlpha == 0 {
		cfg.Model.MinAlpha = def.Model.MinAlpha
	}
	if cfg.Evaluation.SuccessThreshold == 0 {
		cfg.Evaluation.SuccessThreshold = def.Evaluation.SuccessThreshold
	}
	if cfg.Evaluation.SignificanceLevel == 0 {
		cfg.Evaluation.SignificanceLevel = def.Evaluation.SignificanceLevel
	}
	if cfg.Evaluation.TrainPairings == "" {
		cfg.Evaluation.TrainPairings = def.Evaluation.TrainPairings
	}
	if cfg.Evaluation.TestPairings == "" {
		cfg.Evaluation.TestPairings = def.Evaluation.TestPairings
	}
	if cfg.Output.SummaryCSV == "" {
		cfg.Output.SummaryCSV = def.Output.SummaryCSV
	}
	if cfg.Output.ImageDir == "" {
		cfg.Output.ImageDir = def.Output.ImageDir
	}
	if len(cfg.Experiments) == 0 {
		cfg.Experiments = def.Experiments
	}
}

// applyEnvOverrides lets DOCVEC_LOG_LEVEL, DOCVEC_STORE_TYPE and
// DOCVEC_STORE_PATH replace file values.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("DOCVEC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DOCVEC_STORE_TYPE"); v != "" {
		cfg.Store.Type = v
	}
	if v := os.Getenv("DOCVEC_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
}
