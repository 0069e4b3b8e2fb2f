// Package usecase はユーザー機能のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"user_service/internal/feature/users/domain"
	"user_service/internal/feature/users/domain/entity"
)

const tracerName = "user_service/internal/feature/users/usecase"

// CreateUserInput は ID を持たないユーザー候補です。
// 年齢の未指定と 0 を区別するため Age はポインタです。
type CreateUserInput struct {
	Name  string
	Email string
	Age   *int
}

// UpdateUserInput は部分更新の入力です。nil または空白のみのフィールドは保存済みの値を維持します。
type UpdateUserInput struct {
	Name  *string
	Email *string
	Age   *int
}

// UserUsecase は入力を検証し、メールアドレスの一意性を保証しながら永続化を行います。
// 可変状態を持たないため並行に使用できます。
type UserUsecase struct {
	users  UserRepository
	tracer trace.Tracer
}

// Option は UserUsecase の生成オプションです。
type Option func(*UserUsecase)

// WithTracerProvider はスパンの生成に tp を使います。指定しない場合はグローバルの Provider を使います。
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(u *UserUsecase) {
		u.tracer = tp.Tracer(tracerName)
	}
}

// NewUserUsecase はリポジトリを受け取り UserUsecase を生成します。
func NewUserUsecase(users UserRepository, opts ...Option) *UserUsecase {
	u := &UserUsecase{users: users, tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CreateUser は候補を検証し、重複するメールアドレスを拒否したうえで保存します。
// 戻り値のユーザーにはストアが採番した ID と CreatedAt が設定されています。
func (u *UserUsecase) CreateUser(ctx context.Context, in *CreateUserInput) (_ *entity.User, err error) {
	ctx, span := u.tracer.Start(ctx, "UserUsecase.CreateUser")
	defer func() { endSpan(span, err) }()

	if err := validateCreate(in); err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Age:   *in.Age,
	}
	slog.Debug("create user requested", "name", user.Name, "email", user.Email)

	err = u.users.Transaction(ctx, func(repo UserRepository) error {
		exists, err := repo.ExistsByEmail(ctx, user.Email, 0)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", domain.ErrConflict, user.Email)
		}
		return repo.Create(ctx, user)
	})
	if err != nil {
		return nil, classify(err)
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	slog.Info("user created", "id", user.ID, "email", user.Email)
	return user, nil
}

// GetUser は指定した ID のユーザーを返します。
// ID が正でない場合はストアを参照せず domain.ErrValidation を返します。
func (u *UserUsecase) GetUser(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := u.tracer.Start(ctx, "UserUsecase.GetUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	if err := validateID(id); err != nil {
		return nil, err
	}
	slog.Debug("get user", "id", id)

	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

// GetAllUsers は全ユーザーを ID 順に返します。戻り値が nil になることはありません。
func (u *UserUsecase) GetAllUsers(ctx context.Context) (_ []entity.User, err error) {
	ctx, span := u.tracer.Start(ctx, "UserUsecase.GetAllUsers")
	defer func() { endSpan(span, err) }()

	slog.Debug("get all users")
	users, err := u.users.FindAll(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if users == nil {
		users = []entity.User{}
	}
	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}

// UpdateUser は in で指定されたフィールドを対象ユーザーに反映します。
//
// 指定されたフィールドが作成時の規則に違反する場合、ストアに触れる前にリクエスト全体を拒否します。
// 新しいメールアドレスは対象の読み込み前に他の全ユーザーと照合します。ID と CreatedAt は変更しません。
func (u *UserUsecase) UpdateUser(ctx context.Context, id int64, in *UpdateUserInput) (_ *entity.User, err error) {
	ctx, span := u.tracer.Start(ctx, "UserUsecase.UpdateUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	if err := validateID(id); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, fmt.Errorf("%w: update must not be nil", domain.ErrValidation)
	}
	name, hasName := supplied(in.Name)
	email, hasEmail := supplied(in.Email)
	if in.Age != nil {
		if err := validateAge(in.Age); err != nil {
			return nil, err
		}
	}
	slog.Debug("update user requested", "id", id, "name", name, "email", email)

	var user *entity.User
	err = u.users.Transaction(ctx, func(repo UserRepository) error {
		if hasEmail {
			exists, err := repo.ExistsByEmail(ctx, email, id)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s", domain.ErrConflict, email)
			}
		}

		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if hasName {
			current.Name = name
		}
		if hasEmail {
			current.Email = email
		}
		if in.Age != nil {
			current.Age = *in.Age
		}
		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	slog.Info("user updated", "id", user.ID)
	return user, nil
}

// DeleteUser は指定した ID のユーザーを完全に削除します。
func (u *UserUsecase) DeleteUser(ctx context.Context, id int64) (err error) {
	ctx, span := u.tracer.Start(ctx, "UserUsecase.DeleteUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	if err := validateID(id); err != nil {
		return err
	}
	slog.Debug("delete user requested", "id", id)

	err = u.users.Transaction(ctx, func(repo UserRepository) error {
		if _, err := repo.FindByID(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return classify(err)
	}

	slog.Info("user deleted", "id", id)
	return nil
}

// classify はドメインのエラーはそのまま返し、それ以外は基盤エラーとしてラップします。
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInfrastructure):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrInfrastructure, err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
