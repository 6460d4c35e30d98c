package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/local-business-directory/config"
	"github.com/oksasatya/local-business-directory/internal/application"
	repo "github.com/oksasatya/local-business-directory/internal/domain/repository"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
)

// app-level container to share constructed components across packages.
// The router wires its modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	jwtManager  *helpers.JWTManager

	userRepo     repo.UserRepository
	businessRepo repo.BusinessRepository

	publisher application.Publisher
	provider  application.IdentityProvider
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

// SetStore installs the record store chosen at start-up (postgres or memory).
func SetStore(users repo.UserRepository, businesses repo.BusinessRepository) {
	userRepo, businessRepo = users, businesses
}
func GetUserRepo() repo.UserRepository         { return userRepo }
func GetBusinessRepo() repo.BusinessRepository { return businessRepo }

func SetPublisher(p application.Publisher) { publisher = p }
func GetPublisher() application.Publisher  { return publisher }

func SetIdentityProvider(p application.IdentityProvider) { provider = p }
func GetIdentityProvider() application.IdentityProvider  { return provider }
