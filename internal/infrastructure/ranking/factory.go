package ranking

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wbpos/backend/internal/domain/tracking"
	"github.com/wbpos/backend/internal/infrastructure/config"
)

// NewSampler builds the RankSampler selected by cfg.Provider
func NewSampler(cfg config.RankingConfig, logger *zap.Logger) (tracking.RankSampler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case "", config.RankingProviderRandom:
		logger.Warn("Using placeholder random rank sampler; positions are synthetic",
			zap.Int("top_n", cfg.TopN),
			zap.Float64("absent_ratio", cfg.AbsentRatio),
		)
		return NewRandomSampler(WithTopN(cfg.TopN), WithAbsentRatio(cfg.AbsentRatio)), nil
	case config.RankingProviderOracle:
		client, err := NewOracleClient(&OracleConfig{
			BaseURL:        cfg.OracleURL,
			TimeoutSeconds: cfg.OracleTimeoutSeconds,
			TopN:           cfg.TopN,
		}, logger.Named("ranking"))
		if err != nil {
			return nil, err
		}
		logger.Info("Using ranking oracle", zap.String("url", cfg.OracleURL))
		return client, nil
	default:
		return nil, fmt.Errorf("ranking: unknown provider %q", cfg.Provider)
	}
}
