package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// AdminHandler covers the configuration surfaces: custom fields, tags,
// system settings, accounts and the archive.
type AdminHandler struct {
	fields   *service.FieldsService
	tags     *service.TagService
	settings *service.SettingsService
	accounts *service.AuthService
	archive  *service.ArchiveService
}

// AdminDependencies bundles services for the admin handler.
type AdminDependencies struct {
	Fields   *service.FieldsService
	Tags     *service.TagService
	Settings *service.SettingsService
	Accounts *service.AuthService
	Archive  *service.ArchiveService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{
		fields:   deps.Fields,
		tags:     deps.Tags,
		settings: deps.Settings,
		accounts: deps.Accounts,
		archive:  deps.Archive,
	}
}

// ListFieldDefinitions GET /admin/custom-fields.
func (h *AdminHandler) ListFieldDefinitions(c *fiber.Ctx) error {
	defs, err := h.fields.ListDefinitions(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.FieldDefinitionResponse, 0, len(defs))
	for i := range defs {
		items = append(items, fieldDefinitionResponse(&defs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateFieldDefinition POST /admin/custom-fields.
func (h *AdminHandler) CreateFieldDefinition(c *fiber.Ctx) error {
	var req dto.FieldDefinitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	def, err := h.fields.CreateDefinition(c.UserContext(), fieldDefinitionInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fieldDefinitionResponse(def)})
}

// UpdateFieldDefinition PUT /admin/custom-fields/:id.
func (h *AdminHandler) UpdateFieldDefinition(c *fiber.Ctx) error {
	var req dto.FieldDefinitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	def, err := h.fields.UpdateDefinition(c.UserContext(), c.Params("id"), fieldDefinitionInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fieldDefinitionResponse(def)})
}

// DeleteFieldDefinition DELETE /admin/custom-fields/:id.
func (h *AdminHandler) DeleteFieldDefinition(c *fiber.Ctx) error {
	if err := h.fields.DeleteDefinition(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTags GET /admin/tags.
func (h *AdminHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.tags.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		items = append(items, tagResponse(&tags[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTag POST /admin/tags.
func (h *AdminHandler) CreateTag(c *fiber.Ctx) error {
	var req dto.TagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tag, err := h.tags.Create(c.UserContext(), service.TagInput{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": tagResponse(tag)})
}

// UpdateTag PUT /admin/tags/:id.
func (h *AdminHandler) UpdateTag(c *fiber.Ctx) error {
	var req dto.TagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tag, err := h.tags.Update(c.UserContext(), c.Params("id"), service.TagInput{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tagResponse(tag)})
}

// DeleteTag DELETE /admin/tags/:id.
func (h *AdminHandler) DeleteTag(c *fiber.Ctx) error {
	if err := h.tags.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListSettings GET /admin/settings.
func (h *AdminHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.settings.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SettingResponse, 0, len(settings))
	for i := range settings {
		items = append(items, settingResponse(&settings[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SaveSetting PUT /admin/settings/:category/:key.
func (h *AdminHandler) SaveSetting(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SettingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	setting, err := h.settings.Save(c.UserContext(), actor.ID, c.Params("category"), c.Params("key"), req.Value)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settingResponse(setting)})
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := parsePagination(c)
	profiles, err := h.accounts.ListUsers(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ChangeUserRole PATCH /admin/users/:id/role.
func (h *AdminHandler) ChangeUserRole(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.accounts.ChangeRole(c.UserContext(), actor, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// RunArchive POST /admin/archive/run.
func (h *AdminHandler) RunArchive(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ArchiveRunRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	count, err := h.archive.Run(c.UserContext(), actor, req.DaysOld)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ArchiveRunResponse{Archived: count}})
}

// RestoreArchived POST /admin/archive/:id/restore.
func (h *AdminHandler) RestoreArchived(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	restoredID, err := h.archive.Restore(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_id": restoredID}})
}

// ListArchived GET /admin/archive.
func (h *AdminHandler) ListArchived(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := parsePagination(c)
	archived, err := h.archive.List(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}
	now := time.Now()
	items := make([]dto.ArchivedTicketResponse, 0, len(archived))
	for i := range archived {
		items = append(items, archivedTicketResponse(&archived[i], now))
	}
	return c.JSON(fiber.Map{"data": items})
}

func fieldDefinitionInput(req dto.FieldDefinitionRequest) service.FieldDefinitionInput {
	return service.FieldDefinitionInput{
		Name:        req.Name,
		FieldType:   req.FieldType,
		Options:     req.Options,
		Required:    req.Required,
		Description: req.Description,
	}
}
