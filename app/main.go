package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sushihentaime/myblog/internal/authorservice"
	"github.com/sushihentaime/myblog/internal/blogservice"
	"github.com/sushihentaime/myblog/internal/common"
	"github.com/sushihentaime/myblog/internal/mailservice"
)

type application struct {
	config        *Config
	logger        *slog.Logger
	authorService *authorservice.AuthorService
	blogService   *blogservice.BlogService
	mailService   *mailservice.MailService
	broker        *common.MessageBroker
}

func main() {
	envFile := flag.String("env", ".env", "path to the env file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(*envFile)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	policy := blogservice.AuthorPolicy{
		Mode:            blogservice.AuthorMode(cfg.AuthorPolicy),
		DefaultAuthorID: cfg.DefaultAuthorID,
	}
	if err := policy.Validate(); err != nil {
		logger.Error("invalid author policy", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBMaxIdleTime)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	version, err := common.MigrateDB(db, cfg.MigrationsPath)
	if err != nil {
		logger.Error("failed to migrate the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("database migrated", slog.Uint64("version", uint64(version)))

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupBlogExchange(broker)
	if err != nil {
		logger.Error("failed to setup the blog exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(cfg.CacheTTL, cfg.CacheCleanup)

	app := &application{
		config:        cfg,
		logger:        logger,
		authorService: authorservice.NewAuthorService(db, broker, cache),
		blogService:   blogservice.NewBlogService(db, cache, broker, policy),
		mailService:   mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger),
		broker:        broker,
	}
	app.mailService.SendActivationEmail()
	app.mailService.SendShareEmail()

	err = app.serve()
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
