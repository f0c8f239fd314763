//go:build wireinject
// +build wireinject

package di

import (
	"roombook/config"
	"roombook/infras/jwt"
	"roombook/infras/kafka"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/infras/rabbitmq"
	"roombook/infras/redis"
	"roombook/infras/s3"
	"roombook/infras/websocket"
	authService "roombook/internal/domains/auth/service"
	"roombook/internal/domains/reservation/expiry"
	reservationRepository "roombook/internal/domains/reservation/repository"
	reservationService "roombook/internal/domains/reservation/service"
	roomRepository "roombook/internal/domains/room/repository"
	roomService "roombook/internal/domains/room/service"
	userRepository "roombook/internal/domains/user/repository"
	userService "roombook/internal/domains/user/service"
	authHandler "roombook/internal/handlers/auth"
	reservationHandler "roombook/internal/handlers/reservation"
	roomHandler "roombook/internal/handlers/room"
	userHandler "roombook/internal/handlers/user"
	wsHandler "roombook/internal/handlers/ws"
	"roombook/internal/jobs"
	"roombook/permissions"
	"roombook/shared/cache"
	"roombook/shared/notifier"
	"roombook/transport/http"
	"roombook/transport/http/middleware"
	"roombook/transport/http/router"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
	rabbitmq.New,
	websocket.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	notifier.New,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
	expiry.New,
)

var domains = wire.NewSet(
	userDomain,
	authDomain,
	roomDomain,
	reservationDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	roomHandler.New,
	reservationHandler.New,
	wsHandler.New,
	router.New,
)

var background = wire.NewSet(
	jobs.New,
)

func InitializeService() (*App, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		background,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}, nil
}
