package configuration

import (
	"time"

	"github.com/adampresley/configinator"
)

type Config struct {
	AdminEmails          string `flag:"adminemails" env:"ADMIN_EMAILS" default:"" description:"Comma-separated list of emails that are always admins"`
	AlbumCacheSeconds    int    `flag:"albumcache" env:"ALBUM_CACHE_SECONDS" default:"60" description:"How long the album list is cached, in seconds"`
	AwsEndpointUrl       string `flag:"awsep" env:"AWS_ENDPOINT_URL" default:"http://localhost:4566" description:"AWS endpoint URL"`
	AwsRegion            string `flag:"awsregion" env:"AWS_REGION" default:"us-east-1" description:"AWS region"`
	AwsAccessKeyId       string `flag:"awsaccesskeyid" env:"AWS_ACCESS_KEY_ID" default:"" description:"AWS access key ID"`
	AwsSecretAccessKey   string `flag:"awssecretaccesskey" env:"AWS_SECRET_ACCESS_KEY" default:"" description:"AWS secret access key"`
	AwsBucket            string `flag:"awsbucket" env:"AWS_BUCKET" default:"album-photos" description:"S3 bucket that holds album photos"`
	CarouselIntervalMs   int    `flag:"carouselinterval" env:"CAROUSEL_INTERVAL_MS" default:"3000" description:"Milliseconds between carousel frames"`
	CarouselPrefetch     int    `flag:"carouselprefetch" env:"CAROUSEL_PREFETCH" default:"5" description:"Number of photos per album used by the gallery carousel"`
	ContactFromEmail     string `flag:"contactfrom" env:"CONTACT_FROM_EMAIL" default:"noreply@example.com" description:"Sender address of contact emails"`
	ContactToEmail       string `flag:"contactto" env:"CONTACT_TO_EMAIL" default:"" description:"Address that receives contact form messages"`
	CookieSecret         string `flag:"cookiesecret" env:"COOKIE_SECRET" default:"password" description:"Secret for encoding cookies"`
	DSN                  string `flag:"dsn" env:"DSN" default:"file:./data/photoportfolio.db" description:"Data source name"`
	EmailApiKey          string `flag:"emailapikey" env:"EMAIL_API_KEY" default:"" description:"API key for sending emails"`
	Host                 string `flag:"host" env:"HOST" default:"localhost:8081" description:"The address and port to bind the HTTP server to"`
	LogLevel             string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	MaintenanceSchedule  string `flag:"maintenance" env:"MAINTENANCE_SCHEDULE" default:"@every 1h" description:"Cron schedule of the maintenance job"`
	MaxThumbnailWorkers  int    `flag:"mtw" env:"MAX_THUMBNAIL_WORKERS" default:"8" description:"Maximum number of concurrent thumbnail workers"`
	MaxUploadMB          int    `flag:"maxupload" env:"MAX_UPLOAD_MB" default:"25" description:"Maximum size of a single uploaded photo, in megabytes"`
	PublicStorageURL     string `flag:"publicstorageurl" env:"PUBLIC_STORAGE_URL" default:"" description:"Public base URL of the bucket. Storage is disabled when empty"`
	RateLimitBurst       int    `flag:"rateburst" env:"RATE_LIMIT_BURST" default:"5" description:"Burst size of the per-IP form rate limiter"`
	RateLimitPerMinute   int    `flag:"rateperminute" env:"RATE_LIMIT_PER_MINUTE" default:"10" description:"Form submissions allowed per IP per minute"`
	SiteName             string `flag:"sitename" env:"SITE_NAME" default:"Photo Portfolio" description:"Name shown in page titles and emails"`
	ThumbnailWidthPixels int    `flag:"thumbwidth" env:"THUMBNAIL_WIDTH" default:"400" description:"Longest edge of generated thumbnails"`
	TrustProxyHeaders    bool   `flag:"trustproxyheaders" env:"TRUST_PROXY_HEADERS" default:"false" description:"Take the client address from X-Real-IP / X-Forwarded-For. Only enable behind a reverse proxy that sets them"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}

func (c Config) CarouselInterval() time.Duration {
	if c.CarouselIntervalMs <= 0 {
		return 3 * time.Second
	}

	return time.Duration(c.CarouselIntervalMs) * time.Millisecond
}

func (c Config) AlbumCacheTTL() time.Duration {
	return time.Duration(c.AlbumCacheSeconds) * time.Second
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
