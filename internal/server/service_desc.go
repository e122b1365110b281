package server

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName: полное имя gRPC-сервиса.
const ServiceName = "pricetracker.v1.PriceTracker"

// PriceTrackerService: набор unary-методов сервиса.
type PriceTrackerService interface {
	CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error)
	CreateFlightSearch(context.Context, *CreateFlightSearchRequest) (*FlightSearchResponse, error)
	UpdateFlightSearch(context.Context, *UpdateFlightSearchRequest) (*FlightSearchResponse, error)
	GetFlightSearchesByUser(context.Context, *GetFlightSearchesByUserRequest) (*FlightSearchListResponse, error)
	GetActiveFlightSearches(context.Context, *GetActiveFlightSearchesRequest) (*FlightSearchListResponse, error)
	CreatePriceRecord(context.Context, *CreatePriceRecordRequest) (*PriceRecordResponse, error)
	GetPriceHistory(context.Context, *GetPriceHistoryRequest) (*GetPriceHistoryResponse, error)
	CreateAlert(context.Context, *CreateAlertRequest) (*AlertResponse, error)
	GetAlerts(context.Context, *GetAlertsRequest) (*GetAlertsResponse, error)
	MarkAlertRead(context.Context, *MarkAlertReadRequest) (*AlertResponse, error)
	ObservePrice(context.Context, *ObservePriceRequest) (*ObservePriceResponse, error)
}

// ServiceDesc описывает сервис для grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PriceTrackerService)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateUser", PriceTrackerService.CreateUser),
		unaryMethod("CreateFlightSearch", PriceTrackerService.CreateFlightSearch),
		unaryMethod("UpdateFlightSearch", PriceTrackerService.UpdateFlightSearch),
		unaryMethod("GetFlightSearchesByUser", PriceTrackerService.GetFlightSearchesByUser),
		unaryMethod("GetActiveFlightSearches", PriceTrackerService.GetActiveFlightSearches),
		unaryMethod("CreatePriceRecord", PriceTrackerService.CreatePriceRecord),
		unaryMethod("GetPriceHistory", PriceTrackerService.GetPriceHistory),
		unaryMethod("CreateAlert", PriceTrackerService.CreateAlert),
		unaryMethod("GetAlerts", PriceTrackerService.GetAlerts),
		unaryMethod("MarkAlertRead", PriceTrackerService.MarkAlertRead),
		unaryMethod("ObservePrice", PriceTrackerService.ObservePrice),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pricetracker/v1/price_tracker",
}

// RegisterPriceTrackerServer регистрирует реализацию на gRPC-сервере.
func RegisterPriceTrackerServer(s grpc.ServiceRegistrar, srv PriceTrackerService) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unaryMethod строит MethodDesc так же, как это делает protoc-gen-go-grpc,
// но для произвольных структур запроса и ответа.
func unaryMethod[Req, Resp any](
	name string,
	call func(PriceTrackerService, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(PriceTrackerService)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(impl, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
