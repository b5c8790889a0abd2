package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/models"
	"pokedex_service/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// bcrypt ignores everything past 72 bytes of input.
const maxBcryptPassword = 72

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	tokens      TokenIssuer
	bcryptCost  int
}

type UserSaver interface {
	SaveUser(ctx context.Context, email string, passHash []byte) (uid string, err error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
}

type TokenIssuer interface {
	NewToken(uid string) (string, error)
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	tokens TokenIssuer,
	bcryptCost int,
) *Auth {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		tokens:      tokens,
		bcryptCost:  bcryptCost,
	}
}

// * RegisterNewUser hashes the password and stores a new user
func (a *Auth) RegisterNewUser(ctx context.Context, email, pass string) (string, error) {
	const op = "auth.RegisterNewUser"

	log := a.log.With(
		slog.String("op", op),
	)

	log.Info("Registering new user")

	passHash, err := bcrypt.GenerateFromPassword(bcryptInput(pass), a.bcryptCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, email, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("User already exists")

			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("Failed to save user", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("User registered", slog.String("uid", id))

	return id, nil
}

// * VerifyCredentials checks the password against the stored hash and returns the user id
func (a *Auth) VerifyCredentials(ctx context.Context, email, pass string) (string, error) {
	const op = "auth.VerifyCredentials"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, bcryptInput(pass)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return user.ID, nil
}

// * Login verifies credentials and issues a bearer token
func (a *Auth) Login(ctx context.Context, email, pass string) (string, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	uid, err := a.VerifyCredentials(ctx, email, pass)
	if err != nil {
		return "", err
	}

	token, err := a.tokens.NewToken(uid)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.String("uid", uid))

	return token, nil
}

// bcryptInput passes short passwords through unchanged and replaces longer
// ones with the base64 SHA-256 digest, which fits the bcrypt input limit.
func bcryptInput(pass string) []byte {
	if len(pass) <= maxBcryptPassword {
		return []byte(pass)
	}

	sum := sha256.Sum256([]byte(pass))

	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
