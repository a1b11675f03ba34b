package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/wakeupnow/wakeup/internal/auth"
	"github.com/wakeupnow/wakeup/internal/models"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful authentication response
type LoginResponse struct {
	Token string      `json:"token"`
	User  *UserDetail `json:"user"`
}

// UserDetail represents user information returned in responses
type UserDetail struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// RegisterRequest represents a registration request. Validation runs
// through the server validator so failures map to 422, not 400.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	CPF      string `json:"cpf" validate:"required,cpf"`
	Password string `json:"password" validate:"required,min=8"`
}

// SocialAuthResponse represents the Google/Apple endpoint response. Either
// Token+User are set or IsNewUser is true and UserData carries the prefill.
type SocialAuthResponse struct {
	Token     string          `json:"token,omitempty"`
	User      *UserDetail     `json:"user,omitempty"`
	IsNewUser bool            `json:"isNewUser"`
	UserData  *SocialUserData `json:"userData,omitempty"`
}

// SocialUserData carries the provider profile for a not-yet-registered user
type SocialUserData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GoogleSignInRequest represents the Google credential exchange body
type GoogleSignInRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// AppleSignInRequest represents the Apple credential exchange body
type AppleSignInRequest struct {
	IdentityToken string `json:"identityToken" binding:"required"`
	AuthCode      string `json:"authCode"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

func userDetail(user *models.User) *UserDetail {
	return &UserDetail{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

// @Summary Login
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Unknown email is 404 so the client can redirect to registration
	// with the email pre-filled.
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "No account for this email"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Social-only accounts have no password to check
	if user.PasswordHash == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account uses a social provider to sign in"})
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: userDetail(&user)})
}

// @Summary Register
// @Description Create a new account with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} LoginResponse
// @Failure 409 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/auth/register [post]
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationMessage(err)})
		return
	}

	// Duplicate email is 409 so the client can suggest logging in instead
	var existing models.User
	err := s.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		s.logger.Error().Err(err).Msg("Failed to check existing user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// CPF is stored as bare digits
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		CPF:          digitsOnly(req.CPF),
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	}

	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered")

	c.JSON(http.StatusCreated, LoginResponse{Token: token, User: userDetail(user)})
}

// @Summary Google sign-in
// @Description Exchange a Google identity credential for a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleSignInRequest true "Google credential"
// @Success 200 {object} SocialAuthResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/google [post]
func (s *Server) googleSignIn(c *gin.Context) {
	var req GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name, email, err := decodeIdentityToken(req.Credential)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credential"})
		return
	}

	s.finishSocialAuth(c, "google", name, email)
}

// @Summary Apple sign-in
// @Description Exchange an Apple identity token for a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AppleSignInRequest true "Apple credential"
// @Success 200 {object} SocialAuthResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/apple [post]
func (s *Server) appleSignIn(c *gin.Context) {
	var req AppleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name, email, err := decodeIdentityToken(req.IdentityToken)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identity token"})
		return
	}

	// Apple only includes the profile on the first authorization, the
	// request body carries it forward on later ones.
	if name == "" {
		name = req.Name
	}
	if email == "" {
		email = req.Email
	}
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identity token carries no email"})
		return
	}

	s.finishSocialAuth(c, "apple", name, email)
}

// finishSocialAuth resolves a provider identity to a session. Unknown
// emails get isNewUser plus the prefill instead of an implicit account.
func (s *Server) finishSocialAuth(c *gin.Context, provider, name, email string) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusOK, SocialAuthResponse{
			IsNewUser: true,
			UserData:  &SocialUserData{Name: name, Email: email},
		})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("provider", provider).
		Msg("User signed in via provider")

	c.JSON(http.StatusOK, SocialAuthResponse{Token: token, User: userDetail(&user)})
}

// @Summary Logout
// @Description Discard the session server-side
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /api/auth/logout [post]
func (s *Server) logout(c *gin.Context) {
	// Tokens are stateless, there is nothing to revoke in dev. The client
	// clears its local session regardless of this response.
	if sessionData, ok := GetSessionData(c); ok {
		s.logger.Info().Str("user_id", sessionData.UserID).Msg("User logged out")
	}
	c.Status(http.StatusNoContent)
}

// decodeIdentityToken extracts name and email from a provider JWT without
// verifying the signature. Dev trusts the payload; production validation
// against provider keys is out of scope here.
func decodeIdentityToken(raw string) (name, email string, err error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return "", "", fmt.Errorf("failed to parse identity token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("unexpected claims type")
	}

	name, _ = claims["name"].(string)
	email, _ = claims["email"].(string)
	if email == "" {
		return "", "", fmt.Errorf("identity token carries no email")
	}
	return name, email, nil
}

// validationMessage flattens validator errors into a single message
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "email":
			parts = append(parts, "email is invalid")
		case "cpf":
			parts = append(parts, "cpf is invalid")
		case "min":
			parts = append(parts, fmt.Sprintf("%s must have at least %s characters", strings.ToLower(fe.Field()), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(parts, "; ")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
