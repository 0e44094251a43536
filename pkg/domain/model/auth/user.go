package auth

import (
	"time"

	"github.com/campus-lab/campusboard/pkg/domain/types"
)

// User is an account record. Password holds a bcrypt hash and is empty for
// accounts provisioned through Google sign-in.
type User struct {
	ID        types.UserID `json:"id" db:"id"`
	Email     string       `json:"email" db:"email"`
	Password  string       `json:"-" db:"password"`
	Name      string       `json:"name" db:"name"`
	GoogleID  string       `json:"-" db:"google_id"`
	Picture   string       `json:"picture,omitempty" db:"picture"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// Claims is the payload carried in an issued token.
type Claims struct {
	UserID types.UserID
	Email  string
}

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// Credential is the response body of the auth endpoints. Success false
// carries a message to surface to the user verbatim.
type Credential struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty" masq:"secret"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}
