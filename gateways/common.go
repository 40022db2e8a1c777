package gateways

import (
	"context"

	"aptosyield/custody/common"

	log "github.com/sirupsen/logrus"
)

// Gateways bundles the optional persistence backends.
type Gateways struct {
	Cache   GasCache
	Journal TxJournal
	closers []func()
}

// Connect wires redis and mongo when their environment is present and falls back to no-op
// implementations otherwise. A configured backend that cannot be reached is an error.
func Connect(ctx context.Context, env *common.ENVConfigs) (*Gateways, error) {
	g := &Gateways{Cache: NoopGasCache{}, Journal: NoopJournal{}}

	if env.RedisHost != "" {
		cache, err := RedisClient(ctx, env)
		if err != nil {
			return nil, err
		}
		g.Cache = cache
		g.closers = append(g.closers, func() { cache.Close() })
	} else {
		log.Warnf("%s is not set, gas estimates are not cached", common.RedisHost)
	}

	if env.MongoDbConnectionString != "" {
		journal, err := ConnectDB(ctx, env)
		if err != nil {
			g.Close()
			return nil, err
		}
		g.Journal = journal
		g.closers = append(g.closers, func() { journal.Close(context.Background()) })
	} else {
		log.Warnf("%s is not set, transactions are not journaled", common.MongoDbConnectionString)
	}
	return g, nil
}

func (g *Gateways) Close() {
	for _, closeFn := range g.closers {
		closeFn()
	}
}
