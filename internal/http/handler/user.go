package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"userapi/internal/interactor"
	"userapi/internal/model"
)

// hashCost is the bcrypt cost applied to incoming passwords.
var hashCost = bcrypt.DefaultCost

// userRequest is the JSON body accepted by create and update.
// Required fields are pointers so an absent key can be told apart from an empty string.
type userRequest struct {
	ID        int64      `json:"id"`
	Firstname *string    `json:"firstname"`
	Lastname  *string    `json:"lastname"`
	Nick      *string    `json:"nick"`
	Pass      string     `json:"pass"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// userListResponse wraps the full user list.
type userListResponse struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

type deleteResponse struct {
	ID int64 `json:"id"`
}

// toFields converts the request into interactor input, hashing the password when one is given.
func (r userRequest) toFields() (model.UserFields, error) {
	f := model.UserFields{
		ID:        r.ID,
		Firstname: r.Firstname,
		Lastname:  r.Lastname,
		Nick:      r.Nick,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Pass != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(r.Pass), hashCost)
		if err != nil {
			return model.UserFields{}, err
		}
		f.Pass = string(hash)
	}
	return f, nil
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil
}

// badRequest carries the error code and message for a rejected request body.
type badRequest struct {
	code, message string
}

func bindUser(c *fiber.Ctx) (model.UserFields, *badRequest) {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return model.UserFields{}, &badRequest{"INVALID_BODY", "invalid request body"}
	}
	fields, err := req.toFields()
	if err != nil {
		// bcrypt rejects passwords longer than 72 bytes.
		return model.UserFields{}, &badRequest{"INVALID_PASS", "password cannot be accepted"}
	}
	return fields, nil
}

// writeUseCaseError maps interactor errors onto the error envelope.
func writeUseCaseError(c *fiber.Ctx, err error) error {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", vErr.Error())
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} userListResponse
// @Router /users [get]
func ListUsers(users interactor.UserUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := users.GetAll(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if items == nil {
			items = []model.User{}
		}
		return c.JSON(userListResponse{Items: items, Total: len(items)})
	}
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{id} [get]
func GetUser(users interactor.UserUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := users.Get(c.UserContext(), id)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if u == nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
		}
		return c.JSON(u)
	}
}

// CreateUser godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body userRequest true "User"
// @Success 201 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /users [post]
func CreateUser(users interactor.UserUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fields, bad := bindUser(c)
		if bad != nil {
			return writeError(c, fiber.StatusBadRequest, bad.code, bad.message)
		}
		u, err := users.Create(c.UserContext(), fields)
		if err != nil {
			return writeUseCaseError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// UpdateUser godoc
// @Summary Replace a user
// @Description Every field is replaced; only the id from the path is kept.
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body userRequest true "User"
// @Success 200 {object} model.User
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /users/{id} [put]
func UpdateUser(users interactor.UserUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fields, bad := bindUser(c)
		if bad != nil {
			return writeError(c, fiber.StatusBadRequest, bad.code, bad.message)
		}
		u, err := users.Update(c.UserContext(), fields, id)
		if err != nil {
			return writeUseCaseError(c, err)
		}
		if u == nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
		}
		return c.JSON(u)
	}
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Deleting an unknown id succeeds and changes nothing.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} deleteResponse
// @Failure 400 {object} errorPayload
// @Router /users/{id} [delete]
func DeleteUser(users interactor.UserUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		deleted, err := users.Delete(c.UserContext(), id)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(deleteResponse{ID: deleted})
	}
}
