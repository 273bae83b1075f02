package http

import (
	"net/http"
	"strconv"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
	offerDomain "github.com/uzochukwuV/lendcore/internal/domain/offer"
	"github.com/uzochukwuV/lendcore/internal/usecase/offer"

	"github.com/labstack/echo/v4"
)

type OfferHandler struct{ uc *offer.Usecase }

func NewOfferHandler(uc *offer.Usecase) *OfferHandler { return &OfferHandler{uc: uc} }

type assetTypeReq struct {
	Kind  string `json:"kind" validate:"required,assetkind"`
	Label string `json:"label"`
}

type createOfferReq struct {
	MaxLoanAmountUSD     float64        `json:"max_loan_amount_usd" validate:"required"`
	MinVerificationScore float64        `json:"min_verification_score" validate:"required"`
	MaxLTVRatio          float64        `json:"max_ltv_ratio" validate:"required"`
	InterestRate         float64        `json:"interest_rate"`
	MaxDurationDays      int            `json:"max_duration_days" validate:"required"`
	AcceptedAssetTypes   []assetTypeReq `json:"accepted_asset_types" validate:"required,min=1,dive"`
	PaymentMethod        string         `json:"payment_method" validate:"required,payrail"`
}

func (h *OfferHandler) CreateOffer(c echo.Context) error {
	lender, err := callerID(c)
	if err != nil {
		return writeFault(c, err)
	}
	var req createOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	types := make([]asset.Type, 0, len(req.AcceptedAssetTypes))
	for _, t := range req.AcceptedAssetTypes {
		types = append(types, asset.Type{Kind: asset.Kind(t.Kind), Label: t.Label})
	}
	id, err := h.uc.Create(c.Request().Context(), lender, offer.CreateInput{
		MaxLoanAmountUSD:     req.MaxLoanAmountUSD,
		MinVerificationScore: req.MinVerificationScore,
		MaxLTVRatio:          req.MaxLTVRatio,
		InterestRate:         req.InterestRate,
		MaxDurationDays:      req.MaxDurationDays,
		AcceptedAssetTypes:   types,
		PaymentMethod:        asset.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return writeFault(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]uint64{"offer_id": id})
}

func (h *OfferHandler) GetOffer(c echo.Context) error {
	id, err := pathID(c, "offer_id")
	if err != nil {
		return writeFault(c, err)
	}
	o, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeFault(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OfferHandler) ListOffers(c echo.Context) error {
	f := offerDomain.ListFilter{
		AssetKind: asset.Kind(c.QueryParam("asset_type")),
		Lender:    c.QueryParam("lender"),
	}
	var p offerDomain.Page
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		p.Limit = n
	}
	if v := c.QueryParam("after_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid after_id"})
		}
		p.AfterID = n
	}

	out, err := h.uc.List(c.Request().Context(), f, p)
	if err != nil {
		return writeFault(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"offers": out})
}

func (h *OfferHandler) DeactivateOffer(c echo.Context) error {
	lender, err := callerID(c)
	if err != nil {
		return writeFault(c, err)
	}
	id, err := pathID(c, "offer_id")
	if err != nil {
		return writeFault(c, err)
	}
	if err := h.uc.Deactivate(c.Request().Context(), lender, id); err != nil {
		return writeFault(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
