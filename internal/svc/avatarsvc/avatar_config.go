package avatarsvc

// AvatarConfig holds configuration parameters for the avatar service.
type AvatarConfig struct {
	// Size is the default edge length in pixels of rendered avatars
	Size int `env:"SIZE" default:"128"`

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`
}
