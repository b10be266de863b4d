package main

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bookstore/internal/config"
	"bookstore/internal/domain/model"
	"bookstore/internal/handler"
	"bookstore/internal/infra/db"
	"bookstore/internal/infra/events"
	"bookstore/internal/infra/mail"
	"bookstore/internal/infra/payment"
	infraRepo "bookstore/internal/infra/repository"
	"bookstore/internal/infra/search"
	"bookstore/internal/server"
	"bookstore/internal/usecase"
	auth "bookstore/internal/usecase/auth_usecase"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	// .envは無くても起動できる（本番は環境変数で渡す）
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Author{},
		&model.Category{},
		&model.Book{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Review{},
		&model.ReviewVote{},
		&model.Wishlist{},
		&model.ContactMessage{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	bookRepo := infraRepo.NewBookGormRepository(gormDB)
	authorRepo := infraRepo.NewAuthorGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gormDB)
	contactRepo := infraRepo.NewContactMessageGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, 10*time.Second)
	mailer := mail.NewSMTPDispatcher(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, logger)

	var publisher usecase.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, logger)
		if err != nil {
			logger.Fatal("amqp connect failed", zap.Error(err))
		}
		defer p.Close()
		publisher = p
	}

	var searchClient *search.Client
	if cfg.RedisAddr != "" {
		cache := search.NewCache(cfg.RedisAddr, cfg.RedisPassword, logger)
		defer cache.Close()
		searchClient = search.NewClient(cfg.GoogleBooksAPIKey, cache, logger)
	} else {
		searchClient = search.NewClient(cfg.GoogleBooksAPIKey, nil, logger)
	}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer)
	catalogUC := usecase.NewCatalogUsecase(bookRepo, authorRepo, categoryRepo, searchClient, logger)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, bookRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, userRepo, gateway, mailer, publisher, &uuidGenerator{}, &realClock{}, logger)
	paymentUC := usecase.NewPaymentUsecase(txManager, orderRepo, orderItemRepo, userRepo, gateway, mailer, publisher, logger)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo, orderItemRepo, userRepo, auditRepo, mailer, publisher, logger)
	adminBookUC := usecase.NewAdminBookUsecase(bookRepo, authorRepo, categoryRepo, auditRepo, logger)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, bookRepo, orderRepo, auditRepo, logger)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, bookRepo)
	contactUC := usecase.NewContactUsecase(contactRepo, logger)

	//Handler生成
	handlers := server.Handlers{
		Auth:       handler.NewAuthHandler(registerUC, loginUC),
		Book:       handler.NewBookHandler(catalogUC),
		Review:     handler.NewReviewHandler(reviewUC),
		Wishlist:   handler.NewWishlistHandler(wishlistUC),
		Contact:    handler.NewContactHandler(contactUC),
		Cart:       handler.NewCartHandler(cartUC),
		Checkout:   handler.NewCheckoutHandler(checkoutUC),
		Payment:    handler.NewPaymentHandler(paymentUC),
		Order:      handler.NewOrderHandler(orderUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
		AdminBook:  handler.NewAdminBookHandler(adminBookUC),
	}

	//Server起動
	e := server.New(cfg, logger)
	server.RegisterRoutes(e, cfg, handlers)

	if err := server.Start(e, cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
