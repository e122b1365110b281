package server

import (
	"encoding/json"
	"time"

	"github.com/flightwatch/price-tracker/internal/model"
	"github.com/flightwatch/price-tracker/internal/service"
)

type UserMessage struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	TelegramChatID      *int64    `json:"telegram_chat_id,omitempty"`
	NotificationEnabled bool      `json:"notification_enabled"`
	CreatedAt           time.Time `json:"created_at"`
}

type FlightSearchMessage struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	OriginCity      string     `json:"origin_city"`
	DestinationCity string     `json:"destination_city"`
	DepartureDate   time.Time  `json:"departure_date"`
	ReturnDate      *time.Time `json:"return_date"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type PriceRecordMessage struct {
	ID             string `json:"id"`
	FlightSearchID string `json:"flight_search_id"`
	// Price в минорных единицах, Amount: та же сумма для отображения ("450.00").
	Price      int64           `json:"price"`
	Amount     string          `json:"amount"`
	Currency   string          `json:"currency"`
	Provider   string          `json:"provider"`
	RecordedAt time.Time       `json:"recorded_at"`
	Details    json.RawMessage `json:"details,omitempty"`
}

type AlertMessage struct {
	ID             string          `json:"id"`
	FlightSearchID string          `json:"flight_search_id"`
	AlertType      model.AlertType `json:"alert_type"`
	OldPrice       *int64          `json:"old_price"`
	NewPrice       int64           `json:"new_price"`
	Currency       string          `json:"currency"`
	Message        string          `json:"message"`
	IsRead         bool            `json:"is_read"`
	CreatedAt      time.Time       `json:"created_at"`
}

type CreateUserRequest struct {
	Email          string `json:"email"`
	TelegramChatID *int64 `json:"telegram_chat_id,omitempty"`
	// Не передан: уведомления включены.
	NotificationEnabled *bool `json:"notification_enabled,omitempty"`
}

type CreateUserResponse struct {
	User UserMessage `json:"user"`
}

type CreateFlightSearchRequest struct {
	UserID          string     `json:"user_id"`
	OriginCity      string     `json:"origin_city"`
	DestinationCity string     `json:"destination_city"`
	DepartureDate   time.Time  `json:"departure_date"`
	ReturnDate      *time.Time `json:"return_date,omitempty"`
}

type FlightSearchResponse struct {
	Search FlightSearchMessage `json:"search"`
}

// UpdateFlightSearchRequest: отсутствующий ключ не меняет поле,
// "return_date": null убирает дату возврата.
type UpdateFlightSearchRequest struct {
	ID              string                     `json:"id"`
	OriginCity      model.Optional[string]     `json:"origin_city,omitzero"`
	DestinationCity model.Optional[string]     `json:"destination_city,omitzero"`
	DepartureDate   model.Optional[time.Time]  `json:"departure_date,omitzero"`
	ReturnDate      model.Optional[*time.Time] `json:"return_date,omitzero"`
	IsActive        model.Optional[bool]       `json:"is_active,omitzero"`
}

type GetFlightSearchesByUserRequest struct {
	UserID   string `json:"user_id"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type GetActiveFlightSearchesRequest struct{}

type FlightSearchListResponse struct {
	Searches []FlightSearchMessage `json:"searches"`
}

type CreatePriceRecordRequest struct {
	FlightSearchID string          `json:"flight_search_id"`
	Price          int64           `json:"price"`
	Currency       string          `json:"currency"`
	Provider       string          `json:"provider"`
	RecordedAt     *time.Time      `json:"recorded_at,omitempty"`
	Details        json.RawMessage `json:"details,omitempty"`
}

type PriceRecordResponse struct {
	Record PriceRecordMessage `json:"record"`
}

type GetPriceHistoryRequest struct {
	FlightSearchID string `json:"flight_search_id"`
	Limit          *int   `json:"limit,omitempty"`
}

type GetPriceHistoryResponse struct {
	Records []PriceRecordMessage `json:"records"`
}

type CreateAlertRequest struct {
	FlightSearchID string          `json:"flight_search_id"`
	AlertType      model.AlertType `json:"alert_type"`
	OldPrice       *int64          `json:"old_price,omitempty"`
	NewPrice       int64           `json:"new_price"`
	Currency       string          `json:"currency"`
	Message        string          `json:"message"`
}

type AlertResponse struct {
	Alert AlertMessage `json:"alert"`
}

type GetAlertsRequest struct {
	UserID         *string `json:"user_id,omitempty"`
	FlightSearchID *string `json:"flight_search_id,omitempty"`
	IsRead         *bool   `json:"is_read,omitempty"`
	Limit          int     `json:"limit,omitempty"`
	Offset         int     `json:"offset,omitempty"`
}

type GetAlertsResponse struct {
	Alerts []AlertMessage `json:"alerts"`
}

type MarkAlertReadRequest struct {
	ID string `json:"id"`
}

type ObservePriceRequest struct {
	FlightSearchID string          `json:"flight_search_id"`
	Price          int64           `json:"price"`
	Currency       string          `json:"currency"`
	Provider       string          `json:"provider"`
	TargetPrice    *int64          `json:"target_price,omitempty"`
	Details        json.RawMessage `json:"details,omitempty"`
}

type ObservePriceResponse struct {
	Record PriceRecordMessage `json:"record"`
	Alert  *AlertMessage      `json:"alert"`
}

func userMessage(u *model.User) UserMessage {
	return UserMessage{
		ID:                  u.ID.String(),
		Email:               u.Email,
		TelegramChatID:      u.TelegramChatID,
		NotificationEnabled: u.NotificationEnabled,
		CreatedAt:           u.CreatedAt,
	}
}

func searchMessage(s *model.FlightSearch) FlightSearchMessage {
	return FlightSearchMessage{
		ID:              s.ID.String(),
		UserID:          s.UserID.String(),
		OriginCity:      s.OriginCity,
		DestinationCity: s.DestinationCity,
		DepartureDate:   s.DepartureDate,
		ReturnDate:      s.ReturnDate,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func searchMessages(searches []model.FlightSearch) []FlightSearchMessage {
	out := make([]FlightSearchMessage, 0, len(searches))
	for i := range searches {
		out = append(out, searchMessage(&searches[i]))
	}
	return out
}

func priceMessage(v service.PriceView) PriceRecordMessage {
	return PriceRecordMessage{
		ID:             v.ID.String(),
		FlightSearchID: v.FlightSearchID.String(),
		Price:          v.Price,
		Amount:         v.Display(),
		Currency:       v.Currency,
		Provider:       v.Provider,
		RecordedAt:     v.RecordedAt,
		Details:        json.RawMessage(v.Details),
	}
}

func alertMessage(a *model.Alert) AlertMessage {
	return AlertMessage{
		ID:             a.ID.String(),
		FlightSearchID: a.FlightSearchID.String(),
		AlertType:      a.AlertType,
		OldPrice:       a.OldPrice,
		NewPrice:       a.NewPrice,
		Currency:       a.Currency,
		Message:        a.Message,
		IsRead:         a.IsRead,
		CreatedAt:      a.CreatedAt,
	}
}
