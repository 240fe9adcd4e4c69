package main

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/akramsystems/llm-n-class-classifier/internal/adapter/client"
	"github.com/akramsystems/llm-n-class-classifier/internal/adapter/repository/filesystem"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/repository"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/service"
	"github.com/akramsystems/llm-n-class-classifier/internal/infrastructure/config"
	"github.com/akramsystems/llm-n-class-classifier/internal/infrastructure/logger"
)

type commandContext struct {
	datasetDirFlag *string
	resultsFlag    *string

	configOnce sync.Once
	config     *config.Config
	logger     *zap.Logger
	configErr  error
}

func newCommandContext(datasetDirFlag, resultsFlag *string) *commandContext {
	return &commandContext{
		datasetDirFlag: datasetDirFlag,
		resultsFlag:    resultsFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		if dir := flagValue(c.datasetDirFlag); dir != "" {
			cfg.Dataset.Dir = dir
		}
		if results := flagValue(c.resultsFlag); results != "" {
			cfg.Dataset.ResultsFile = results
		}

		// stdout is reserved for reports
		cfg.Log.Output = "stderr"
		log, err := logger.NewLogger(&cfg.Log)
		if err != nil {
			c.configErr = err
			return
		}

		c.config = cfg
		c.logger = log
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

func (c *commandContext) completionClient() (service.CompletionClient, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return client.NewCompletionClient(&cfg.LLM)
}

func (c *commandContext) repository() (repository.DatasetRepository, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return filesystem.NewDatasetRepository(cfg.Dataset.Dir, cfg.Dataset.ResultsFile), nil
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
