package domain

var (
	// ErrRegistrationFieldsMissing is returned when name, email or password is absent on registration.
	ErrRegistrationFieldsMissing = NewError(ErrInvalidInput, "Name, email, and password are required.")
	// ErrLoginFieldsMissing is returned when email or password is absent on login.
	ErrLoginFieldsMissing = NewError(ErrInvalidInput, "Email and password are required.")
	// ErrEmailTaken is returned when trying to register an email that is already in use.
	ErrEmailTaken = NewError(ErrConflict, "Email already registered.")
	// ErrInvalidCredentials is returned when the email/password combination is incorrect.
	ErrInvalidCredentials = NewError(ErrUnauthenticated, "Invalid credentials.")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = NewError(ErrNotFound, "User not found.")
)

// User is a registered account.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	AvatarURL    string `json:"avatarUrl"`
	PasswordHash string `json:"passwordHash"` // salt:hash, see authsvc.HashPassword
}

// Profile returns the public view of the user.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

// UserProfile is the part of a User that is returned to clients.
type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}
