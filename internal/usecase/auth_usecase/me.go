package auth

import (
	"context"
	"errors"
	"net/http"

	"ton-shipping/internal/domain/model"
	"ton-shipping/internal/repository"
	"ton-shipping/internal/usecase"
)

type MeUsecase struct {
	userRepo repository.UserRepository
}

func NewMeUsecase(userRepo repository.UserRepository) *MeUsecase {
	return &MeUsecase{userRepo: userRepo}
}

func (u *MeUsecase) Execute(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return model.User{}, err
	}
	return *user, nil
}
