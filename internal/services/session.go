package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// SessionDuration is 7 days.
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions.
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping.
	UserSessionKeyPrefix = "user_session:"
)

// CreateSession creates a new session for a user and stores it in Redis.
// Any existing session for the user is invalidated first so the timer
// resets from the current login. Returns the opaque session token.
func CreateSession(ctx context.Context, userID primitive.ObjectID) (string, error) {
	InvalidateUserSessions(ctx, userID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	sessionKey := SessionKeyPrefix + sessionToken
	userSessionKey := UserSessionKeyPrefix + userID.Hex()

	if err := database.RedisClient.Set(ctx, sessionKey, userID.Hex(), SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := database.RedisClient.Set(ctx, userSessionKey, sessionToken, SessionDuration).Err(); err != nil {
		return "", err
	}

	return sessionToken, nil
}

// ValidateSession checks a session token and returns the user ID it maps to.
func ValidateSession(ctx context.Context, sessionToken string) (primitive.ObjectID, bool) {
	if sessionToken == "" {
		return primitive.NilObjectID, false
	}

	userIDHex, err := database.RedisClient.Get(ctx, SessionKeyPrefix+sessionToken).Result()
	if err != nil {
		return primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		return primitive.NilObjectID, false
	}

	return userID, true
}

// ResolveSession maps a session token to the authenticated user's id and
// role, hitting Redis for the session and Mongo for the role.
func ResolveSession(ctx context.Context, sessionToken string) (string, string, bool) {
	userID, ok := ValidateSession(ctx, sessionToken)
	if !ok {
		return "", "", false
	}

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return "", "", false
	}

	return userID.Hex(), string(user.Role), true
}

// InvalidateSession removes a session from Redis.
func InvalidateSession(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	sessionKey := SessionKeyPrefix + sessionToken

	userIDHex, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err == nil && userIDHex != "" {
		database.RedisClient.Del(ctx, UserSessionKeyPrefix+userIDHex)
	}

	return database.RedisClient.Del(ctx, sessionKey).Err()
}

// InvalidateUserSessions invalidates the active session for a user,
// used when the password changes.
func InvalidateUserSessions(ctx context.Context, userID primitive.ObjectID) error {
	userSessionKey := UserSessionKeyPrefix + userID.Hex()

	sessionToken, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && sessionToken != "" {
		database.RedisClient.Del(ctx, SessionKeyPrefix+sessionToken)
	}

	return database.RedisClient.Del(ctx, userSessionKey).Err()
}
