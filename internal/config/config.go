package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"portal.db"`

	Backend   Backend   `envPrefix:"BACKEND_"`
	Session   Session   `envPrefix:"SESSION_"`
	Stripe    Stripe    `envPrefix:"STRIPE_"`
	Braintree Braintree `envPrefix:"BRAINTREE_"`

	// which payment-collection collaborator to use: stripe or braintree
	PaymentProvider string `env:"PAYMENT_PROVIDER" envDefault:"stripe"`
}

type Backend struct {
	// membership backend REST API, e.g. http://localhost:3000/api/v1
	BaseApiURL     string `env:"BASE_API_URL"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"10"`
}

type Session struct {
	CookieSecret     string `env:"COOKIE_SECRET"`
	AccessTTLMinutes int    `env:"ACCESS_TTL_MINUTES" envDefault:"60"`
	RefreshTTLDays   int    `env:"REFRESH_TTL_DAYS" envDefault:"30"`
	CookieSecure     bool   `env:"COOKIE_SECURE" envDefault:"false"`
}

type Stripe struct {
	SecretKey      string `env:"SECRET_KEY"`
	PublishableKey string `env:"PUBLISHABLE_KEY"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
