package authsvc

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// AvatarURLTemplate is formatted with the URL-encoded display name of a new user
	AvatarURLTemplate string `env:"AVATAR_URL_TEMPLATE" default:"https://api.dicebear.com/7.x/initials/svg?seed=%s"`
}
