package handlers

import (
	"time"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
)

func profileResponse(profile *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        profile.ID,
		Email:     profile.Email,
		FullName:  profile.FullName,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt,
	}
}

func ticketSummary(ticket *domain.Ticket, now time.Time) dto.TicketSummary {
	return dto.TicketSummary{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		CustomerID:  ticket.CustomerID,
		AssignedTo:  ticket.AssignedTo,
		Category:    ticket.Category,
		Tags:        ticket.Tags,
		SLADeadline: ticket.SLADeadline,
		SLAState:    domain.ClassifySLA(ticket.SLADeadline, now),
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		ClosedAt:    ticket.ClosedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		UserID:     comment.UserID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}

func attachmentResponse(attachment *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:          attachment.ID,
		TicketID:    attachment.TicketID,
		UserID:      attachment.UserID,
		Filename:    attachment.Filename,
		ContentType: attachment.ContentType,
		SizeBytes:   attachment.SizeBytes,
		IsInternal:  attachment.IsInternal,
		CreatedAt:   attachment.CreatedAt,
	}
}

func ticketEventResponse(event *domain.TicketEvent) dto.TicketEventResponse {
	return dto.TicketEventResponse{
		ID:         event.ID,
		ChangeType: event.ChangeType,
		ActorID:    event.ActorID,
		OldValue:   event.OldValue,
		NewValue:   event.NewValue,
		CreatedAt:  event.CreatedAt,
	}
}

func fieldDefinitionResponse(def *domain.FieldDefinition) dto.FieldDefinitionResponse {
	return dto.FieldDefinitionResponse{
		ID:          def.ID,
		Name:        def.Name,
		FieldType:   def.FieldType,
		Options:     def.Options,
		Required:    def.Required,
		Description: def.Description,
		CreatedAt:   def.CreatedAt,
		UpdatedAt:   def.UpdatedAt,
	}
}

func tagResponse(tag *domain.Tag) dto.TagResponse {
	return dto.TagResponse{
		ID:          tag.ID,
		Name:        tag.Name,
		Color:       tag.Color,
		Description: tag.Description,
		CreatedAt:   tag.CreatedAt,
		UpdatedAt:   tag.UpdatedAt,
	}
}

func templateResponse(tmpl *domain.ResponseTemplate) dto.TemplateResponse {
	return dto.TemplateResponse{
		ID:        tmpl.ID,
		Title:     tmpl.Title,
		Content:   tmpl.Content,
		CreatedAt: tmpl.CreatedAt,
		UpdatedAt: tmpl.UpdatedAt,
	}
}

func settingResponse(setting *domain.SystemSetting) dto.SettingResponse {
	return dto.SettingResponse{
		Category:  setting.Category,
		Key:       setting.Key,
		Value:     setting.Value,
		UpdatedAt: setting.UpdatedAt,
		UpdatedBy: setting.UpdatedBy,
	}
}

func archivedTicketResponse(archived *domain.ArchivedTicket, now time.Time) dto.ArchivedTicketResponse {
	return dto.ArchivedTicketResponse{
		TicketSummary: ticketSummary(&archived.Ticket, now),
		ArchivedAt:    archived.ArchivedAt,
		ArchivedBy:    archived.ArchivedBy,
	}
}
