package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

const (
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
)

// WrapRedis maps Redis errors to AppError with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return &AppError{Err: err, Kind: KindNotFound, Status: http.StatusNotFound, Message: RedisNotFoundMessage}
	}

	return &AppError{Err: err, Kind: KindRedis, Status: http.StatusBadGateway, Message: RedisErrorMessage}
}
