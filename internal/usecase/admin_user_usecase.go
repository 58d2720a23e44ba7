package usecase

import (
	"context"
	"errors"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"
)

// 顧客アカウントの承認管理
type AdminUserUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

func NewAdminUserUsecase(tx repo.TransactionManager, clock Clock) *AdminUserUsecase {
	return &AdminUserUsecase{tx: tx, clock: clock}
}

type AdminUserListInput struct {
	Verified *bool
	Page     int
	Limit    int
}

type AdminUserListOutput struct {
	Items []model.User `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type ForceLogoutOutput struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

func (u *AdminUserUsecase) List(ctx context.Context, actor model.Actor, in AdminUserListInput) (AdminUserListOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return AdminUserListOutput{}, err
	}

	page := in.Page
	if page == 0 {
		page = 1
	}
	limit := in.Limit
	if limit == 0 {
		limit = 20
	}
	var msgs []string
	if page < 1 {
		msgs = append(msgs, "page must be 1 or greater")
	}
	if limit < 1 || limit > 100 {
		msgs = append(msgs, "limit must be between 1 and 100")
	}
	if len(msgs) > 0 {
		return AdminUserListOutput{}, NewValidationError(msgs...)
	}

	var out AdminUserListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		users, total, err := r.Users().ListCustomers(ctx, repo.UserListFilter{
			Verified: in.Verified,
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			return errDB(err)
		}
		if users == nil {
			users = []model.User{}
		}
		out = AdminUserListOutput{Items: users, Total: total, Page: page, Limit: limit}
		return nil
	})
	if err != nil {
		return AdminUserListOutput{}, err
	}
	return out, nil
}

// 承認/承認取り消し。取り消し時は発行済みトークンも無効にする。
func (u *AdminUserUsecase) SetVerified(ctx context.Context, actor model.Actor, userID int64, verified bool) (model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return model.User{}, err
	}
	if userID <= 0 {
		return model.User{}, NewValidationError("invalid id")
	}

	var out model.User
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrUserNotFound) {
			return errNotFound("user")
		}
		if err != nil {
			return errDB(err)
		}
		if before.IsAdmin() {
			return errNotFound("user")
		}

		if err := r.Users().SetVerified(ctx, userID, verified); err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return errNotFound("user")
			}
			return errDB(err)
		}

		action := model.AuditActionVerifyUser
		if !verified {
			action = model.AuditActionUnverifyUser
			if err := r.Users().IncrementTokenVersion(ctx, userID); err != nil {
				return errDB(err)
			}
			if err := r.RefreshTokens().DeleteAllByUserID(ctx, userID); err != nil {
				return errDB(err)
			}
		}

		if err := r.AuditLogs().Record(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       action,
			ResourceType: model.AuditResourceUser,
			ResourceID:   userID,
			BeforeJSON:   auditJSON(map[string]interface{}{"is_verified": before.IsVerified}),
			AfterJSON:    auditJSON(map[string]interface{}{"is_verified": verified}),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return errDB(err)
		}

		after, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			return errDB(err)
		}
		out = *after
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	return out, nil
}

// token_versionを上げてリフレッシュトークンを全削除
func (u *AdminUserUsecase) ForceLogout(ctx context.Context, actor model.Actor, userID int64) (ForceLogoutOutput, error) {
	if err := requireAdmin(actor); err != nil {
		return ForceLogoutOutput{}, err
	}
	if userID <= 0 {
		return ForceLogoutOutput{}, NewValidationError("invalid id")
	}

	var out ForceLogoutOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Users().IncrementTokenVersion(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return errNotFound("user")
			}
			return errDB(err)
		}
		if err := r.RefreshTokens().DeleteAllByUserID(ctx, userID); err != nil {
			return errDB(err)
		}

		user, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			return errDB(err)
		}
		out = ForceLogoutOutput{UserID: user.ID, NewTokenVersion: user.TokenVersion}
		return nil
	})
	if err != nil {
		return ForceLogoutOutput{}, err
	}
	return out, nil
}
