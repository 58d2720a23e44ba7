package auth

import (
	"context"
	"errors"
	"strings"

	"ton-shipping/internal/domain/model"
	"ton-shipping/internal/repository"
	"ton-shipping/internal/usecase"
	"ton-shipping/internal/validator"
)

// 会員登録の入力
type RegisterUserInput struct {
	FullName        string `json:"full_name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Phone           string `json:"phone" validate:"max=50"`
	Address         string `json:"address" validate:"max=1000"`
	CompanyName     string `json:"company_name" validate:"max=255"`
}

// 会員登録の出力
type RegisterUserOutput struct {
	User    model.User `json:"user"`
	Message string     `json:"message"`
}

const registeredMessage = "Registration successful. Your account is pending verification by an administrator."

// RegisterUserUsecaseは会員登録の処理。
// 登録直後は未承認の顧客で、管理者が承認するまでログインできない。
type RegisterUserUsecase struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	validator usecase.InputValidator
	clock     Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	inputValidator usecase.InputValidator,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo:  userRepo,
		hasher:    hasher,
		validator: inputValidator,
		clock:     clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = validator.NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.CompanyName = strings.TrimSpace(in.CompanyName)

	msgs := u.validator.ValidateStruct(in)
	if in.Password != "" && validator.IsWeakPassword(in.Password) {
		msgs = append(msgs, "password is too weak")
	}
	if in.ConfirmPassword != "" && in.Password != in.ConfirmPassword {
		msgs = append(msgs, "passwords do not match")
	}
	if len(msgs) > 0 {
		return out, usecase.NewValidationError(msgs...)
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return out, ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return out, err
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := &model.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hashed,
		Phone:        in.Phone,
		Address:      in.Address,
		CompanyName:  in.CompanyName,
		Role:         model.RoleCustomer,
		IsVerified:   false,
		TokenVersion: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// DBへ保存（同時登録はunique制約で409）
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	out.User = *user
	out.Message = registeredMessage
	return out, nil
}
