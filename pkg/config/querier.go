package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/darkclainer/wordmeaning/pkg/querier"
)

// OpenQuerier creates querier for configured dictionary source
func (c *Config) OpenQuerier(logger *zap.Logger) (querier.Querier, error) {
	switch c.Source {
	case SourceRemote, "":
		remoteConf := c.Remote
		return querier.NewRemote(nil, nil, &remoteConf), nil
	case SourceLocal:
		return querier.OpenLocal(&c.Local, logger)
	default:
		return nil, fmt.Errorf("unknown dictionary source: %s", c.Source)
	}
}
