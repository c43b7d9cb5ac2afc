package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/datatypes"
)

type ReviewUsecase struct {
	tx repo.TransactionManager
}

func NewReviewUsecase(tx repo.TransactionManager) *ReviewUsecase {
	return &ReviewUsecase{tx: tx}
}

type ReviewEligibilityOutput struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

type SubmitReviewInput struct {
	OrderItemID int64    `json:"order_item_id"`
	Rating      *int     `json:"rating"`
	Content     string   `json:"content"`
	Images      []string `json:"images"`
	IsAnonymous bool     `json:"is_anonymous"`
}

type SubmitReviewOutput struct {
	ReviewID int64 `json:"review_id"`
}

// 明細と注文を引いて所有者を確認
func reviewTarget(ctx context.Context, r repo.TxRepos, userID, orderItemID int64) (model.OrderItem, model.Order, error) {
	item, err := r.OrderItems().FindByID(ctx, orderItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.OrderItem{}, model.Order{}, NewHTTPError(http.StatusNotFound, "order item not found")
	}
	if err != nil {
		return model.OrderItem{}, model.Order{}, err
	}

	o, err := r.Orders().FindByID(ctx, item.OrderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.OrderItem{}, model.Order{}, NewHTTPError(http.StatusNotFound, "order item not found")
	}
	if err != nil {
		return model.OrderItem{}, model.Order{}, err
	}
	if o.UserID != userID {
		return model.OrderItem{}, model.Order{}, NewHTTPError(http.StatusForbidden, "not allowed to review this item")
	}
	return item, o, nil
}

// 完了済みの注文かつ未レビューならtrue
func (u *ReviewUsecase) Eligibility(ctx context.Context, userID, orderItemID int64) (ReviewEligibilityOutput, error) {
	if userID <= 0 {
		return ReviewEligibilityOutput{}, errUnauthorized
	}
	if orderItemID <= 0 {
		return ReviewEligibilityOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order_item_id")
	}

	var out ReviewEligibilityOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, o, err := reviewTarget(ctx, r, userID, orderItemID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusCompleted {
			out = ReviewEligibilityOutput{Reason: "order is not completed"}
			return nil
		}

		exists, err := r.Reviews().ExistsByOrderItemID(ctx, orderItemID)
		if err != nil {
			return err
		}
		if exists {
			out = ReviewEligibilityOutput{Reason: "already reviewed"}
			return nil
		}
		out = ReviewEligibilityOutput{Eligible: true}
		return nil
	})
	if err != nil {
		return ReviewEligibilityOutput{}, txError(ctx, err)
	}
	return out, nil
}

// レビュー投稿。商品の評価を平均(小数1桁)で更新
func (u *ReviewUsecase) Submit(ctx context.Context, userID int64, in SubmitReviewInput) (SubmitReviewOutput, error) {
	if userID <= 0 {
		return SubmitReviewOutput{}, errUnauthorized
	}
	if in.OrderItemID <= 0 {
		return SubmitReviewOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order_item_id")
	}
	rating := 5
	if in.Rating != nil {
		rating = *in.Rating
	}
	if rating < 1 || rating > 5 {
		return SubmitReviewOutput{}, NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	content := strings.TrimSpace(in.Content)
	if len(content) > 2000 {
		return SubmitReviewOutput{}, NewHTTPError(http.StatusBadRequest, "content is too long")
	}

	var out SubmitReviewOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, o, err := reviewTarget(ctx, r, userID, in.OrderItemID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusCompleted {
			return NewHTTPError(http.StatusBadRequest, "only completed orders can be reviewed")
		}

		exists, err := r.Reviews().ExistsByOrderItemID(ctx, item.ID)
		if err != nil {
			return err
		}
		if exists {
			return NewHTTPError(http.StatusConflict, "already reviewed")
		}

		rv := model.ProductReview{
			UserID:      userID,
			OrderID:     o.ID,
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			Rating:      rating,
			IsAnonymous: in.IsAnonymous,
			Status:      model.ReviewStatusVisible,
		}
		if content != "" {
			rv.Content = &content
		}
		if len(in.Images) > 0 {
			b, err := json.Marshal(in.Images)
			if err != nil {
				return err
			}
			rv.Images = datatypes.JSON(b)
		}
		if err := r.Reviews().Create(ctx, &rv); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return NewHTTPError(http.StatusConflict, "already reviewed")
			}
			return err
		}

		avg, ok, err := r.Reviews().AverageRating(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if ok {
			if err := r.Products().UpdateRating(ctx, item.ProductID, avg.Round(1)); err != nil {
				return err
			}
		}

		out.ReviewID = rv.ID
		return nil
	})
	if err != nil {
		return SubmitReviewOutput{}, txError(ctx, err)
	}
	return out, nil
}
