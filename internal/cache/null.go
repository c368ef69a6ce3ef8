package cache

import (
	"context"
	"time"
)

// NullCache never stores anything
type NullCache struct{}

func (NullCache) Get(context.Context, string, any) (bool, error) {
	return false, nil
}

func (NullCache) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (NullCache) Delete(context.Context, string) error {
	return nil
}
