// Package pubsub fans out document change notifications between stores,
// in process or across processes through Redis.
package pubsub

import "context"

// Message is a received pub/sub message.
type Message struct {
	Channel string
	Payload string
}

// PubSub defines channel publish/subscribe operations. The cancel function
// returned by Subscribe closes the message channel.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
}

type Config struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	LocalBuffer   int    `mapstructure:"local_buffer"`
}

// New returns a PubSub backed by Redis if RedisAddr is set, otherwise an
// in-process Local.
func New(ctx context.Context, cfg Config) (PubSub, error) {
	if cfg.RedisAddr != "" {
		return NewRedis(ctx, cfg)
	}
	return NewLocal(cfg.LocalBuffer), nil
}
