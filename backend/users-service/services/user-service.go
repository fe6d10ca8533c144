package services

import (
	"context"
	"fmt"
	"html"

	"taskboard-project/backend/users-service/logging"
	"taskboard-project/backend/users-service/models"
	"taskboard-project/backend/users-service/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserService struct {
	UserCollection *mongo.Collection
	BlackList      map[string]bool
}

func NewUserService(userCollection *mongo.Collection, blackList map[string]bool) *UserService {
	return &UserService{
		UserCollection: userCollection,
		BlackList:      blackList,
	}
}

// RegisterUser validates and stores a new user with a bcrypt-hashed
// password. Usernames are unique.
func (s *UserService) RegisterUser(ctx context.Context, user models.User) error {
	var existingUser models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"username": user.Username}).Decode(&existingUser); err == nil {
		return fmt.Errorf("user with username already exists")
	}

	user.Username = html.EscapeString(user.Username)
	user.Name = html.EscapeString(user.Name)
	user.LastName = html.EscapeString(user.LastName)
	user.Email = html.EscapeString(user.Email)

	if err := utils.ValidatePassword(user.Password); err != nil {
		return err
	}
	if s.BlackList[user.Password] {
		return fmt.Errorf("password is too common, choose another one")
	}

	hashedPassword, err := utils.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashedPassword

	if user.Role == "" {
		user.Role = "member"
	}
	user.IsActive = true

	if _, err := s.UserCollection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %v", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered successfully", user.Username)
	return nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, fmt.Errorf("user not found")
	}
	return &user, nil
}

// LoginUser checks credentials and returns the user together with a signed
// token carrying username and role.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*models.User, string, error) {
	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, "", fmt.Errorf("invalid username or password")
	}

	if !user.IsActive {
		return nil, "", fmt.Errorf("user account is not active")
	}

	if !utils.CheckPassword(user.Password, password) {
		return nil, "", fmt.Errorf("invalid username or password")
	}

	token, err := utils.GenerateToken(user.Username, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %v", err)
	}

	logging.Logger.Infof("Event ID: USER_LOGIN, Description: User %s logged in", user.Username)
	return &user, token, nil
}
