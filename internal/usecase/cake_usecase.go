package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"

	"github.com/shopspring/decimal"
)

const maxCakeImages = 4

type CakeUsecase struct {
	tx    repo.TransactionManager
	cakes repo.CakeRepository
}

// DI
func NewCakeUsecase(tx repo.TransactionManager, cakes repo.CakeRepository) *CakeUsecase {
	return &CakeUsecase{tx: tx, cakes: cakes}
}

type CakeOutput struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Stock       int64     `json:"stock"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	Images      []string  `json:"images"`
}

type CreateCakeInput struct {
	Name        string
	Description string
	Price       string
	Stock       int64
	Category    string
	Images      []string
}

type CreateCakeOutput struct {
	CakeID         int64 `json:"cakeId"`
	UploadedImages int   `json:"uploadedImages"`
}

// nil の項目は変更しない
type UpdateCakeInput struct {
	Name        *string
	Description *string
	Price       *string
	Stock       *int64
	Category    *string
	Images      []string
}

type AdjustStockInput struct {
	Stock  int64
	Reason string
}

// 監査ログに残すケーキの状態
type cakeSnapshot struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int64  `json:"stock"`
	Category    string `json:"category"`
}

func (u *CakeUsecase) List(ctx context.Context) ([]CakeOutput, error) {
	cakes, err := u.cakes.List(ctx)
	if err != nil {
		return []CakeOutput{}, dbError(err)
	}
	outs := make([]CakeOutput, 0, len(cakes))
	for _, c := range cakes {
		outs = append(outs, toCakeOutput(c))
	}
	return outs, nil
}

func (u *CakeUsecase) Get(ctx context.Context, cakeID int64) (CakeOutput, error) {
	if cakeID <= 0 {
		return CakeOutput{}, validationError("Invalid cake id")
	}

	c, err := u.cakes.FindByID(ctx, cakeID)
	if errors.Is(err, repo.ErrNotFound) {
		return CakeOutput{}, notFound("Cake not found")
	}
	if err != nil {
		return CakeOutput{}, dbError(err)
	}
	return toCakeOutput(c), nil
}

func (u *CakeUsecase) Create(ctx context.Context, adminUserID int64, in CreateCakeInput) (CreateCakeOutput, error) {
	if adminUserID <= 0 {
		return CreateCakeOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.Price) == "" {
		return CreateCakeOutput{}, validationError("Name and price are required")
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return CreateCakeOutput{}, err
	}
	if in.Stock < 0 {
		return CreateCakeOutput{}, validationError("Stock must be >= 0")
	}
	urls, err := cleanImageURLs(in.Images)
	if err != nil {
		return CreateCakeOutput{}, err
	}

	cake := model.Cake{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
	}
	for i, url := range urls {
		cake.Images = append(cake.Images, model.CakeImage{ImageURL: url, IsPrimary: i == 0})
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Cakes().Create(ctx, &cake); err != nil {
			return dbError(err)
		}

		//初期在庫も履歴に残す
		if cake.Stock > 0 {
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				CakeID:      cake.ID,
				ActorUserID: adminUserID,
				Delta:       cake.Stock,
				Reason:      "initial stock",
			}); err != nil {
				return dbError(err)
			}
		}

		after := snapshotOf(cake)
		return writeCakeAudit(ctx, r, adminUserID, model.AuditActionCreateCake, cake.ID, nil, &after)
	})
	if err != nil {
		return CreateCakeOutput{}, err
	}

	return CreateCakeOutput{CakeID: cake.ID, UploadedImages: len(urls)}, nil
}

func (u *CakeUsecase) Update(ctx context.Context, adminUserID int64, cakeID int64, in UpdateCakeInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cakeID <= 0 {
		return validationError("Invalid cake id")
	}

	var urls []string
	if in.Images != nil {
		cleaned, err := cleanImageURLs(in.Images)
		if err != nil {
			return err
		}
		// 空配列は「画像を全部消す」
		urls = append([]string{}, cleaned...)
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		current, err := r.Cakes().FindByID(ctx, cakeID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Cake not found")
		}
		if err != nil {
			return dbError(err)
		}

		next := current
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return validationError("Name is required")
			}
			next.Name = name
		}
		if in.Description != nil {
			next.Description = strings.TrimSpace(*in.Description)
		}
		if in.Price != nil {
			price, err := parsePrice(*in.Price)
			if err != nil {
				return err
			}
			next.Price = price
		}
		if in.Stock != nil {
			if *in.Stock < 0 {
				return validationError("Stock must be >= 0")
			}
			next.Stock = *in.Stock
		}
		if in.Category != nil {
			next.Category = strings.TrimSpace(*in.Category)
		}

		if err := r.Cakes().Update(ctx, next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("Cake not found")
			}
			return dbError(err)
		}
		if err := r.Cakes().ReplaceImages(ctx, cakeID, urls); err != nil {
			return dbError(err)
		}

		if next.Stock != current.Stock {
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				CakeID:      cakeID,
				ActorUserID: adminUserID,
				Delta:       next.Stock - current.Stock,
				Reason:      "cake update",
			}); err != nil {
				return dbError(err)
			}
		}

		before, after := snapshotOf(current), snapshotOf(next)
		return writeCakeAudit(ctx, r, adminUserID, model.AuditActionUpdateCake, cakeID, &before, &after)
	})
}

// 画像・カート・注文明細はカスケードで消える
func (u *CakeUsecase) Delete(ctx context.Context, adminUserID int64, cakeID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cakeID <= 0 {
		return validationError("Invalid cake id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		current, err := r.Cakes().FindByID(ctx, cakeID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Cake not found")
		}
		if err != nil {
			return dbError(err)
		}

		if err := r.Cakes().Delete(ctx, cakeID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("Cake not found")
			}
			return dbError(err)
		}

		before := snapshotOf(current)
		return writeCakeAudit(ctx, r, adminUserID, model.AuditActionDeleteCake, cakeID, &before, nil)
	})
}

// AdjustStock は在庫の現在値を設定し、差分を履歴と監査ログに残す。
func (u *CakeUsecase) AdjustStock(ctx context.Context, adminUserID int64, cakeID int64, in AdjustStockInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cakeID <= 0 {
		return validationError("Invalid cake id")
	}
	if in.Stock < 0 {
		return validationError("Stock must be >= 0")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return validationError("Reason is required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		current, err := r.Cakes().FindByID(ctx, cakeID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Cake not found")
		}
		if err != nil {
			return dbError(err)
		}

		if err := r.Inventory().SetStock(ctx, cakeID, in.Stock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("Cake not found")
			}
			return dbError(err)
		}

		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			CakeID:      cakeID,
			ActorUserID: adminUserID,
			Delta:       in.Stock - current.Stock,
			Reason:      reason,
		}); err != nil {
			return dbError(err)
		}

		before, _ := json.Marshal(map[string]int64{"stock": current.Stock})
		after, _ := json.Marshal(map[string]int64{"stock": in.Stock})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceCake,
			ResourceID:   cakeID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
}

// 価格は0以上、小数2桁に丸める
func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, validationError("Price must be a number")
	}
	if price.IsNegative() {
		return decimal.Decimal{}, validationError("Price must be >= 0")
	}
	return price.Round(2), nil
}

func cleanImageURLs(raw []string) ([]string, error) {
	urls := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			urls = append(urls, s)
		}
	}
	if len(urls) > maxCakeImages {
		return nil, validationError("A cake can have at most 4 images")
	}
	return urls, nil
}

func snapshotOf(c model.Cake) cakeSnapshot {
	return cakeSnapshot{
		Name:        c.Name,
		Description: c.Description,
		Price:       formatMoney(c.Price),
		Stock:       c.Stock,
		Category:    c.Category,
	}
}

func writeCakeAudit(ctx context.Context, r repo.TxRepos, actorID int64, action model.AuditAction, cakeID int64, before, after *cakeSnapshot) error {
	log := model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceCake,
		ResourceID:   cakeID,
	}
	if before != nil {
		b, _ := json.Marshal(before)
		log.BeforeJSON = string(b)
	}
	if after != nil {
		a, _ := json.Marshal(after)
		log.AfterJSON = string(a)
	}
	if err := r.AuditLogs().Create(ctx, log); err != nil {
		return dbError(err)
	}
	return nil
}

func toCakeOutput(c model.Cake) CakeOutput {
	return CakeOutput{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Price:       formatMoney(c.Price),
		Stock:       c.Stock,
		Category:    c.Category,
		CreatedAt:   c.CreatedAt,
		Images:      c.ImageURLs(),
	}
}
