// Package console は対話型のコンソールメニューを提供します。
// 標準入力から操作を読み取り、UserUsecase を呼び出して結果をテキストで出力します。
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"user_service/internal/feature/users/domain"
	"user_service/internal/feature/users/domain/entity"
	"user_service/internal/feature/users/usecase"
)

// UserUsecase はメニューが利用するユースケースです。
type UserUsecase interface {
	CreateUser(ctx context.Context, in *usecase.CreateUserInput) (*entity.User, error)
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	GetAllUsers(ctx context.Context) ([]entity.User, error)
	UpdateUser(ctx context.Context, id int64, in *usecase.UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// errInputClosed は入力が EOF に達したときに読み取り関数が返します。
var errInputClosed = errors.New("input closed")

// Menu は 1=追加, 2=検索, 3=一覧, 4=更新, 5=削除, 0=終了 のメニューです。
type Menu struct {
	users UserUsecase
	in    *bufio.Scanner
	out   io.Writer
}

// NewMenu は in から読み取り out に書き込む Menu を生成します。
func NewMenu(users UserUsecase, in io.Reader, out io.Writer) *Menu {
	return &Menu{users: users, in: bufio.NewScanner(in), out: out}
}

// Run は 0 が選ばれるか入力が終わるまでメニューを繰り返します。
// コマンドの失敗は出力に表示され、ループは継続します。
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printMenu()
		choice, err := m.readInt("Choose an action: ")
		if err != nil {
			return m.finish(err)
		}

		switch choice {
		case 1:
			err = m.addUser(ctx)
		case 2:
			err = m.findUser(ctx)
		case 3:
			m.listUsers(ctx)
		case 4:
			err = m.updateUser(ctx)
		case 5:
			err = m.deleteUser(ctx)
		case 0:
			m.println("Bye")
			return nil
		default:
			m.println("Invalid choice. Try again.")
		}
		if err != nil {
			return m.finish(err)
		}
	}
}

func (m *Menu) printMenu() {
	m.println("")
	m.println("1 - Add user")
	m.println("2 - Find user")
	m.println("3 - List users")
	m.println("4 - Update user")
	m.println("5 - Delete user")
	m.println("0 - Exit")
}

func (m *Menu) addUser(ctx context.Context) error {
	name, err := m.readLine("Name: ")
	if err != nil {
		return err
	}
	email, err := m.readLine("Email: ")
	if err != nil {
		return err
	}
	age, err := m.readInt("Age: ")
	if err != nil {
		return err
	}

	user, err := m.users.CreateUser(ctx, &usecase.CreateUserInput{Name: name, Email: email, Age: &age})
	if err != nil {
		m.report("creating the user", err)
		return nil
	}
	m.printf("User created! ID: %d\n", user.ID)
	return nil
}

func (m *Menu) findUser(ctx context.Context) error {
	id, err := m.readID("User ID: ")
	if err != nil {
		return err
	}
	user, err := m.users.GetUser(ctx, id)
	if err != nil {
		m.report("loading the user", err)
		return nil
	}
	m.printUser(user)
	return nil
}

func (m *Menu) listUsers(ctx context.Context) {
	users, err := m.users.GetAllUsers(ctx)
	if err != nil {
		m.report("listing users", err)
		return
	}
	if len(users) == 0 {
		m.println("No users found")
		return
	}
	m.println("--- Users ---")
	for i := range users {
		m.printUser(&users[i])
	}
}

// updateUser は現在の値を表示し、空欄のフィールドは変更しません。
func (m *Menu) updateUser(ctx context.Context) error {
	id, err := m.readID("User ID to update: ")
	if err != nil {
		return err
	}
	current, err := m.users.GetUser(ctx, id)
	if err != nil {
		m.report("loading the user", err)
		return nil
	}
	m.printf("Current: ID=%d, Name='%s', Email='%s', Age=%d\n", current.ID, current.Name, current.Email, current.Age)
	m.println("Leave a field blank to keep it")

	name, err := m.readLine("New name: ")
	if err != nil {
		return err
	}
	email, err := m.readLine("New email: ")
	if err != nil {
		return err
	}
	rawAge, err := m.readLine("New age: ")
	if err != nil {
		return err
	}

	in := &usecase.UpdateUserInput{Name: &name, Email: &email}
	if rawAge != "" {
		age, err := strconv.Atoi(rawAge)
		if err != nil {
			m.println("Validation error: age must be a number, nothing was changed")
			return nil
		}
		in.Age = &age
	}

	user, err := m.users.UpdateUser(ctx, id, in)
	if err != nil {
		m.report("updating the user", err)
		return nil
	}
	m.println("User updated!")
	m.printUser(user)
	return nil
}

// deleteUser は対象を表示し Y/N の確認後に削除します。
func (m *Menu) deleteUser(ctx context.Context) error {
	id, err := m.readID("User ID to delete: ")
	if err != nil {
		return err
	}
	user, err := m.users.GetUser(ctx, id)
	if err != nil {
		m.report("loading the user", err)
		return nil
	}
	answer, err := m.readLine(fmt.Sprintf("Delete user ID: %d | %s | %s ? (Y/N) ", user.ID, user.Name, user.Email))
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		m.println("Cancelled")
		return nil
	}

	if err := m.users.DeleteUser(ctx, id); err != nil {
		m.report("deleting the user", err)
		return nil
	}
	m.println("User deleted!")
	return nil
}

// report は失敗を分類してメッセージを表示します。想定外のエラーはログにも出力します。
func (m *Menu) report(action string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		m.println("Validation error: " + err.Error())
	case errors.Is(err, domain.ErrNotFound):
		m.println("User not found: " + err.Error())
	case errors.Is(err, domain.ErrConflict):
		m.println("Conflict: " + err.Error())
	default:
		slog.Error("console command failed", "action", action, "error", err)
		m.println("Unexpected error while " + action)
	}
}

func (m *Menu) printUser(u *entity.User) {
	m.printf("ID: %d | %s | %s | %d years\n", u.ID, u.Name, u.Email, u.Age)
}

// readLine はプロンプトを表示して1行読み取り、前後の空白を取り除きます。
func (m *Menu) readLine(prompt string) (string, error) {
	m.printf("%s", prompt)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(m.in.Text()), nil
}

// readInt は整数が入力されるまで繰り返し読み取ります。
func (m *Menu) readInt(prompt string) (int, error) {
	line, err := m.readLine(prompt)
	for err == nil {
		n, convErr := strconv.Atoi(line)
		if convErr == nil {
			return n, nil
		}
		line, err = m.readLine("Please enter a valid number: ")
	}
	return 0, err
}

func (m *Menu) readID(prompt string) (int64, error) {
	line, err := m.readLine(prompt)
	for err == nil {
		id, convErr := strconv.ParseInt(line, 10, 64)
		if convErr == nil {
			return id, nil
		}
		line, err = m.readLine("Please enter a valid number: ")
	}
	return 0, err
}

// finish は入力の終了を正常終了として扱います。
func (m *Menu) finish(err error) error {
	if errors.Is(err, errInputClosed) {
		m.println("")
		return nil
	}
	return err
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}
