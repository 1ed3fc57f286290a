package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"sofa/db"
	"sofa/globals"
	"sofa/mq"
	"sofa/rdx"
	"sofa/structs"
	"sofa/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type registerPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func newToken(user structs.User, ttl time.Duration) (string, error) {
	claims := &structs.Claims{
		Username: user.Username,
		UserID:   user.UserID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

func Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload registerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		http.Error(w, "Username, email and password are required", http.StatusBadRequest)
		return
	}
	if payload.Role != structs.RoleIndividual && payload.Role != structs.RoleCompany {
		http.Error(w, "Role must be individual or company", http.StatusBadRequest)
		return
	}

	// Email is unique across users
	err := db.UserCollection.FindOne(r.Context(), bson.M{"email": payload.Email}).Err()
	if err == nil {
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		logrus.Errorf("error checking email: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user := structs.User{
		UserID:    utils.GenerateID(12),
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  string(hashedPassword),
		Role:      payload.Role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := db.UserCollection.InsertOne(r.Context(), user); err != nil {
		logrus.Errorf("error inserting user: %v", err)
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	m := mq.Index{EntityType: "user", EntityId: user.UserID, Action: "POST"}
	go mq.Emit("user-registered", m)

	user.Password = ""
	utils.SendJSONResponse(w, http.StatusCreated, user)
}

func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	var user structs.User
	err := db.UserCollection.FindOne(r.Context(), bson.M{"email": strings.ToLower(strings.TrimSpace(payload.Email))}).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	// OAuth-only accounts carry no password hash
	if user.Password == "" {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := newToken(user, 24*time.Hour)
	if err != nil {
		logrus.Errorf("error signing token: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]any{
		"token":  token,
		"userid": user.UserID,
		"role":   user.Role,
	})
}

func LogoutUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		http.Error(w, "Invalid user", http.StatusUnauthorized)
		return
	}

	if _, err := rdx.RdxDel("session:" + userID); err != nil {
		logrus.Warnf("session cleanup failed for user %s: %v", userID, err)
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		http.Error(w, "Invalid user", http.StatusUnauthorized)
		return
	}

	var user structs.User
	err := db.UserCollection.FindOne(r.Context(), bson.M{"userid": userID}).Decode(&user)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	token, err := newToken(user, 24*time.Hour)
	if err != nil {
		logrus.Errorf("error signing refresh token: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"token": token})
}
