package server

import (
	"context"

	"google.golang.org/grpc"
)

// Client: клиент сервиса поверх любого grpc.ClientConnInterface.
// Все вызовы идут с JSON-кодеком.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, req *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error) {
	return invoke[CreateUserResponse](ctx, c.cc, "CreateUser", req, opts)
}

func (c *Client) CreateFlightSearch(ctx context.Context, req *CreateFlightSearchRequest, opts ...grpc.CallOption) (*FlightSearchResponse, error) {
	return invoke[FlightSearchResponse](ctx, c.cc, "CreateFlightSearch", req, opts)
}

func (c *Client) UpdateFlightSearch(ctx context.Context, req *UpdateFlightSearchRequest, opts ...grpc.CallOption) (*FlightSearchResponse, error) {
	return invoke[FlightSearchResponse](ctx, c.cc, "UpdateFlightSearch", req, opts)
}

func (c *Client) GetFlightSearchesByUser(ctx context.Context, req *GetFlightSearchesByUserRequest, opts ...grpc.CallOption) (*FlightSearchListResponse, error) {
	return invoke[FlightSearchListResponse](ctx, c.cc, "GetFlightSearchesByUser", req, opts)
}

func (c *Client) GetActiveFlightSearches(ctx context.Context, req *GetActiveFlightSearchesRequest, opts ...grpc.CallOption) (*FlightSearchListResponse, error) {
	return invoke[FlightSearchListResponse](ctx, c.cc, "GetActiveFlightSearches", req, opts)
}

func (c *Client) CreatePriceRecord(ctx context.Context, req *CreatePriceRecordRequest, opts ...grpc.CallOption) (*PriceRecordResponse, error) {
	return invoke[PriceRecordResponse](ctx, c.cc, "CreatePriceRecord", req, opts)
}

func (c *Client) GetPriceHistory(ctx context.Context, req *GetPriceHistoryRequest, opts ...grpc.CallOption) (*GetPriceHistoryResponse, error) {
	return invoke[GetPriceHistoryResponse](ctx, c.cc, "GetPriceHistory", req, opts)
}

func (c *Client) CreateAlert(ctx context.Context, req *CreateAlertRequest, opts ...grpc.CallOption) (*AlertResponse, error) {
	return invoke[AlertResponse](ctx, c.cc, "CreateAlert", req, opts)
}

func (c *Client) GetAlerts(ctx context.Context, req *GetAlertsRequest, opts ...grpc.CallOption) (*GetAlertsResponse, error) {
	return invoke[GetAlertsResponse](ctx, c.cc, "GetAlerts", req, opts)
}

func (c *Client) MarkAlertRead(ctx context.Context, req *MarkAlertReadRequest, opts ...grpc.CallOption) (*AlertResponse, error) {
	return invoke[AlertResponse](ctx, c.cc, "MarkAlertRead", req, opts)
}

func (c *Client) ObservePrice(ctx context.Context, req *ObservePriceRequest, opts ...grpc.CallOption) (*ObservePriceResponse, error) {
	return invoke[ObservePriceResponse](ctx, c.cc, "ObservePrice", req, opts)
}
