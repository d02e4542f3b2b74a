package service

import (
	"errors"
	"julekalender_backend/internal/config"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/repository"
	"julekalender_backend/internal/util"
	"julekalender_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
	Calendar *Calendar
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config, calendar *Calendar) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
		Calendar: calendar,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	ShowName bool   `json:"show_name"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	return s.register(req, false)
}

// EnsureAdmin creates an admin account unless one with the same email
// exists. The bool reports whether a user was created.
func (s *AuthService) EnsureAdmin(req RegisterRequest) (*model.User, bool, error) {
	existing, err := s.UserRepo.FindByLogin(strings.ToLower(strings.TrimSpace(req.Email)))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	user, err := s.register(req, true)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *AuthService) register(req RegisterRequest, admin bool) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	taken, err := s.UserRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrEmailRegistered
	}
	taken, err = s.UserRepo.ExistsByUsername(username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		ShowName: req.ShowName,
		IsAdmin:  admin,
	}
	if err := s.UserRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrUsernameTaken
		}
		return nil, err
	}

	logger.Log.Info("User registered", zap.Uint("user_id", user.ID), zap.Bool("admin", admin))
	return user, nil
}

func (s *AuthService) Login(req LoginRequest) (*LoginResponse, error) {
	login := strings.TrimSpace(req.Login)
	if strings.Contains(login, "@") {
		login = strings.ToLower(login)
	}

	user, err := s.UserRepo.FindByLogin(login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	now := s.Calendar.Now()
	if err := s.UserRepo.TouchLogin(user.ID, now); err != nil {
		logger.Log.Warn("Failed to record login time", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	return &LoginResponse{Token: token, User: user}, nil
}
