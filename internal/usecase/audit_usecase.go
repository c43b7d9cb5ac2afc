package usecase

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type ListAuditLogsInput struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
}

type AuditLogListOutput struct {
	List     []model.AuditLog `json:"list"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

type AuditUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditUsecase(logs repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{logs: logs}
}

// 管理者操作ログ（新しい順）
func (u *AuditUsecase) List(ctx context.Context, in ListAuditLogsInput) (AuditLogListOutput, error) {
	page, size, offset := normalizePage(in.Page, in.PageSize, 20, 100)

	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       size,
		Offset:      offset,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		if rt != model.AuditResourceOrder && rt != model.AuditResourceInventory {
			return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
		}
		f.ResourceType = &rt
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "from must be before to")
	}

	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, dbError(ctx, err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return AuditLogListOutput{List: logs, Page: page, PageSize: size}, nil
}
