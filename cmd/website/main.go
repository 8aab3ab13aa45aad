package main

import (
	"context"
	"embed"
	"encoding/gob"
	"log/slog"
	"time"

	"github.com/adampresley/adamgokit/awsconfig"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/photoportfolio/cmd/website/internal/admin"
	"github.com/adampresley/photoportfolio/cmd/website/internal/configuration"
	"github.com/adampresley/photoportfolio/cmd/website/internal/forms"
	"github.com/adampresley/photoportfolio/cmd/website/internal/gallery"
	"github.com/adampresley/photoportfolio/cmd/website/internal/home"
	"github.com/adampresley/photoportfolio/cmd/website/internal/maintenance"
	"github.com/adampresley/photoportfolio/pkg/adminauth"
	"github.com/adampresley/photoportfolio/pkg/migrations"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/adampresley/photoportfolio/pkg/services"
	_ "github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

var (
	Version string = "development"
	appName string = "photoportfolio"

	//go:embed app
	appFS embed.FS

	config configuration.Config

	/* Services */
	albumService       services.AlbumServicer
	db                 *sqlz.DB
	emailService       services.EmailServicer
	libraryService     services.LibraryServicer
	maintenanceService maintenance.MaintenanceService
	photoService       services.PhotoServicer
	renderer           rendering.TemplateRenderer
	sessionService     sessions.Session[*models.User]
	storageService     services.StorageServicer
	userService        services.UserService

	/* Controllers */
	adminController   admin.AdminController
	galleryController gallery.GalleryController
	homeController    home.HomeHandlers
)

func main() {
	var (
		err      error
		s3Client s3.S3Client
	)

	_ = godotenv.Load()

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("awsEndpointUrl", config.AwsEndpointUrl),
		slog.String("awsRegion", config.AwsRegion),
		slog.String("awsBucket", config.AwsBucket),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Setup services
	 */
	binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	if db, err = sqlz.Connect("sqlite", config.DSN); err != nil {
		panic(err)
	}

	if err = migrations.Migrate(db); err != nil {
		panic(err)
	}

	gob.Register(&models.User{})

	cookieStore := sessions.NewCookieStore(config.CookieSecret)
	sessionService = sessions.NewSessionWrapper[*models.User](cookieStore, "photoportfolioadmin", "user")

	storageEnabled := config.PublicStorageURL != ""

	if storageEnabled {
		awsConfig := &awsconfig.Config{
			Endpoint:        config.AwsEndpointUrl,
			Region:          config.AwsRegion,
			AccessKeyID:     config.AwsAccessKeyId,
			SecretAccessKey: config.AwsSecretAccessKey,
		}

		retrier.Retry(func() error {
			if err = awsConfig.Load(); err != nil {
				slog.Error("failed to load AWS config. trying again", "error", err)
				return err
			}

			return nil
		})

		if err == nil {
			s3Client, err = s3.NewClient(awsConfig)
		}

		if err != nil {
			slog.Error("object storage could not be set up. photos will not be shown", "error", err)
			storageEnabled = false
		}
	} else {
		slog.Warn("PUBLIC_STORAGE_URL is not set. object storage is disabled")
	}

	renderer, err = rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	})

	if err != nil {
		panic(err)
	}

	storageService = services.NewStorageService(services.StorageServiceConfig{
		Bucket:        config.AwsBucket,
		Client:        s3Client,
		Enabled:       storageEnabled,
		PublicBaseURL: config.PublicStorageURL,
		Region:        config.AwsRegion,
	})

	albumService = services.NewAlbumService(services.AlbumServiceConfig{
		CacheTTL: config.AlbumCacheTTL(),
		DB:       db,
	})

	photoService = services.NewPhotoService(services.PhotoServiceConfig{
		DB: db,
	})

	userService = services.NewUserService(services.UserServiceConfig{
		DB: db,
	})

	libraryService = services.NewLibraryService(services.LibraryServiceConfig{
		AlbumService:   albumService,
		MaxUploadBytes: config.MaxUploadBytes(),
		PhotoService:   photoService,
		StorageService: storageService,
	})

	emailService = services.NewEmailService(services.EmailServiceConfig{
		ApiKey:    config.EmailApiKey,
		FromEmail: config.ContactFromEmail,
		FromName:  config.SiteName,
		ToEmail:   config.ContactToEmail,
		ToName:    config.SiteName,
	})

	maintenanceService = maintenance.NewMaintenanceService(maintenance.MaintenanceServiceConfig{
		AlbumService:   albumService,
		LibraryService: libraryService,
		MaxWorkers:     config.MaxThumbnailWorkers,
		PhotoService:   photoService,
		ShutdownCtx:    shutdownCtx,
		StorageService: storageService,
		ThumbnailWidth: uint(config.ThumbnailWidthPixels),
	})

	adminChecker := adminauth.NewChecker(adminauth.CheckerConfig{
		AllowList: adminauth.ParseAllowList(config.AdminEmails),
		Role:      models.RoleAdmin,
		Roles:     userService,
	})

	validate := forms.NewValidator()

	/*
	 * Setup controllers
	 */
	homeController = home.NewHomeController(home.HomeControllerConfig{
		AlbumService:   albumService,
		Config:         &config,
		EmailService:   emailService,
		Renderer:       renderer,
		StorageService: storageService,
		Validator:      validate,
	})

	galleryController = gallery.NewGalleryController(gallery.GalleryControllerConfig{
		AlbumService:     albumService,
		CarouselInterval: config.CarouselInterval(),
		Config:           &config,
		PhotoService:     photoService,
		Prefetch:         config.CarouselPrefetch,
		Renderer:         renderer,
		StorageService:   storageService,
		Workers:          config.MaxThumbnailWorkers,
	})

	adminController = admin.NewAdminController(admin.AdminControllerConfig{
		AlbumService:   albumService,
		Checker:        adminChecker,
		Config:         &config,
		LibraryService: libraryService,
		Renderer:       renderer,
		SessionService: sessionService,
		StorageService: storageService,
		UserService:    userService,
		Validator:      validate,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	adminMiddleware := newAdminMiddleware(sessionService, adminChecker, adminController.AccessDeniedPage)

	formLimiter := newIPRateLimiter(config.RateLimitPerMinute, config.RateLimitBurst, config.TrustProxyHeaders)
	formLimiter.startCleanup(shutdownCtx, 5*time.Minute)

	routes := newRoutes(routeHandlers{
		admin:           adminController,
		adminMiddleware: adminMiddleware,
		formLimiter:     formLimiter.middleware,
		gallery:         galleryController,
		home:            homeController,
	})

	routerConfig := mux.RouterConfig{
		Address:              config.Host,
		Debug:                Version == "development",
		ServeStaticContent:   true,
		StaticContentRootDir: "app",
		StaticContentPrefix:  "/static/",
		StaticFS:             appFS,
		HttpWriteTimeout:     60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Start the maintenance job
	 */
	maintenanceCron, err := maintenance.Schedule(config.MaintenanceSchedule, maintenanceService)

	if err != nil {
		panic(err)
	}

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	<-maintenanceCron.Stop().Done()
	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}
