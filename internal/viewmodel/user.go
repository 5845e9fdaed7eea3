package viewmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

const usersRoot = "users"

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type UserViewModel struct {
	*listVM[models.UserData]
}

func NewUserViewModel(s store.Store) *UserViewModel {
	return &UserViewModel{
		listVM: newListVM(s, "users", userValid, userSearchFields),
	}
}

func userValid(u models.UserData) bool { return u.Email != "" }

func userSearchFields(u models.UserData) []string {
	return []string{u.Email, u.Firstname, u.Lastname, u.Role, u.Barangay, u.Street}
}

func (vm *UserViewModel) FetchUsers(keywords, role string) {
	keep := func(u models.UserData) bool {
		return role == "" || strings.EqualFold(u.Role, role)
	}
	vm.fetch(usersRoot, false, Keywords(keywords), keep)
}

// ValidateUser runs the synchronous form checks and returns a field-to-message
// map. An empty map means the record is valid; nothing here touches the store.
func ValidateUser(u models.UserData, password string) map[string]string {
	problems := map[string]string{}
	if !emailPattern.MatchString(u.Email) {
		problems["email"] = "invalid email address"
	}
	if strings.TrimSpace(u.Firstname) == "" {
		problems["firstname"] = "first name is required"
	}
	if strings.TrimSpace(u.Lastname) == "" {
		problems["lastname"] = "last name is required"
	}
	if len(password) < 8 {
		problems["password"] = "password must be at least 8 characters"
	}
	switch strings.ToLower(u.Role) {
	case "admin", "client", "coop", "farmer":
	default:
		problems["role"] = "role must be one of admin, client, coop, farmer"
	}
	return problems
}

// AddUser creates the user record keyed by a fresh push key, which becomes
// the user's uid. The email must be unused.
func (vm *UserViewModel) AddUser(ctx context.Context, user models.UserData, onSuccess func(uid string, u models.UserData), onError func(error)) {
	existing, err := vm.Store.QueryEqual(ctx, usersRoot, "email", user.Email)
	if err != nil {
		onError(err)
		return
	}
	if len(existing) > 0 {
		onError(fmt.Errorf("user with email %s already exists", user.Email))
		return
	}
	uid := vm.Store.GenerateKey(usersRoot)
	if err := vm.Store.Write(ctx, usersRoot+"/"+uid, user); err != nil {
		onError(err)
		return
	}
	onSuccess(uid, user)
}

// FindByEmail resolves a user record and its uid by the login email.
func (vm *UserViewModel) FindByEmail(ctx context.Context, email string) (string, models.UserData, error) {
	matches, err := vm.Store.QueryEqual(ctx, usersRoot, "email", email)
	if err != nil {
		return "", models.UserData{}, err
	}
	for uid, raw := range matches {
		var user models.UserData
		if err := json.Unmarshal(raw, &user); err != nil {
			continue
		}
		return uid, user, nil
	}
	return "", models.UserData{}, store.ErrNotFound
}

func (vm *UserViewModel) UpdateUser(ctx context.Context, user models.UserData, onSuccess func(models.UserData), onError func(error)) {
	uid, _, err := vm.FindByEmail(ctx, user.Email)
	if errors.Is(err, store.ErrNotFound) {
		onError(fmt.Errorf("user not found"))
		return
	}
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Write(ctx, usersRoot+"/"+uid, user); err != nil {
		onError(err)
		return
	}
	onSuccess(user)
}
