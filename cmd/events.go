package main

import (
	"go.uber.org/multierr"

	"github.com/mateusmacedo/go-users/internal/config"
	usersApp "github.com/mateusmacedo/go-users/internal/users/application"
	"github.com/mateusmacedo/go-users/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-users/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-users/pkg/infrastructure"
	channelsAdapter "github.com/mateusmacedo/go-users/pkg/infrastructure/channels/adapter"
	kafkaAdapter "github.com/mateusmacedo/go-users/pkg/infrastructure/kafka/adapter"
	redisAdapter "github.com/mateusmacedo/go-users/pkg/infrastructure/redis/adapter"
	watermillAdapter "github.com/mateusmacedo/go-users/pkg/infrastructure/watermill/adapter"
)

type userEventBus = watermillAdapter.WatermillEventBus[pkgDomain.Event[usersApp.UserEvent], usersApp.UserEvent]

// newEventBus monta o barramento de eventos de acordo com USERS_EVENTS_DRIVER.
// A função devolvida fecha o barramento e os recursos do broker.
func newEventBus(cfg config.EventsConfig, appLogger application.AppLogger) (usersApp.UserEventBus, func() error, error) {
	logger := watermillAdapter.NewWatermillLoggerAdapter(appLogger)

	switch cfg.Driver {
	case config.EventsDriverChannels:
		pubSub := channelsAdapter.NewPubSub(logger)
		bus := watermillAdapter.NewWatermillEventBus[pkgDomain.Event[usersApp.UserEvent], usersApp.UserEvent](pubSub, pubSub, appLogger)
		return bus, func() error {
			return multierr.Combine(pubSub.Close(), bus.Close())
		}, nil

	case config.EventsDriverRedis:
		redisCfg := redisAdapter.Config{
			Addr:          cfg.RedisAddr,
			Password:      cfg.RedisPassword,
			DB:            cfg.RedisDB,
			ConsumerGroup: cfg.ConsumerGroup,
			Consumer:      cfg.Consumer,
		}
		client := redisAdapter.NewRedisClient(redisCfg)
		publisher, subscriber, err := redisAdapter.NewPubSub(client, redisCfg, logger)
		if err != nil {
			return nil, nil, multierr.Append(err, client.Close())
		}
		bus := watermillAdapter.NewWatermillEventBus[pkgDomain.Event[usersApp.UserEvent], usersApp.UserEvent](publisher, subscriber, appLogger)
		return bus, closeAll(bus, subscriber.Close, publisher.Close, client.Close), nil

	case config.EventsDriverKafka:
		publisher, subscriber, err := kafkaAdapter.NewPubSub(kafkaAdapter.Config{
			Brokers:       cfg.KafkaBrokers,
			ConsumerGroup: cfg.ConsumerGroup,
			ClientID:      cfg.Consumer,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		bus := watermillAdapter.NewWatermillEventBus[pkgDomain.Event[usersApp.UserEvent], usersApp.UserEvent](publisher, subscriber, appLogger)
		return bus, closeAll(bus, subscriber.Close, publisher.Close), nil

	default:
		return pkgInfra.NewSimpleEventBus[pkgDomain.Event[usersApp.UserEvent], usersApp.UserEvent](appLogger), func() error { return nil }, nil
	}
}

// Fechar o subscriber encerra os canais de mensagens; só então o barramento espera os consumidores.
func closeAll(bus *userEventBus, closers ...func() error) func() error {
	return func() error {
		var err error
		for _, closer := range closers {
			err = multierr.Append(err, closer())
		}
		return multierr.Append(err, bus.Close())
	}
}
