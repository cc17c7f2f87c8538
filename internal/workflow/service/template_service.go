package service

import (
	"context"
	"strings"

	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// TemplateService manages the catalog of workflow templates.
type TemplateService struct {
	templates TemplateRepository
}

func NewTemplateService(templates TemplateRepository) *TemplateService {
	return &TemplateService{templates: templates}
}

// Create adds a template to the catalog. Reviewer-only.
func (s *TemplateService) Create(ctx context.Context, actor users.Actor, req *model.CreateTemplateRequest) (*model.TemplateResponse, error) {
	if !actor.Role.IsReviewer() {
		return nil, apperrors.Authorization("role %s may not create workflow templates", actor.Role)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.Validation("title is required")
	}

	template := &model.WorkflowTemplate{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatedByID: actor.ID,
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, err
	}
	resp := model.ToTemplateResponse(template)
	resp.CreatedBy = actor.FullName
	return resp, nil
}

// List returns every template, oldest first.
func (s *TemplateService) List(ctx context.Context) ([]model.TemplateResponse, error) {
	list, err := s.templates.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.TemplateResponse, 0, len(list))
	for i := range list {
		out = append(out, *model.ToTemplateResponse(&list[i]))
	}
	return out, nil
}
