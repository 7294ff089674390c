package logging

import (
	"go.uber.org/zap"
)

// New builds the application logger: zap's development preset in debug
// mode, the production preset otherwise. The returned func flushes it.
func New(debug bool) (*zap.SugaredLogger, func(), error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}

	sugar := logger.Sugar()
	flush := func() {
		// Sync on a terminal stderr fails on some platforms; nothing to do about it.
		_ = logger.Sync()
	}
	return sugar, flush, nil
}
