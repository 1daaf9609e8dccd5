package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/godilite/camps-trends/pkg/grpc/codec"
)

const ServiceName = "camps.v1.TrendService"

const (
	TrendService_GetTrends_FullMethodName               = "/camps.v1.TrendService/GetTrends"
	TrendService_GetEmployeeTrends_FullMethodName       = "/camps.v1.TrendService/GetEmployeeTrends"
	TrendService_GetTeamTrends_FullMethodName           = "/camps.v1.TrendService/GetTeamTrends"
	TrendService_GetTeamAverages_FullMethodName         = "/camps.v1.TrendService/GetTeamAverages"
	TrendService_GetTeamStats_FullMethodName            = "/camps.v1.TrendService/GetTeamStats"
	TrendService_GetMostImprovedCategory_FullMethodName = "/camps.v1.TrendService/GetMostImprovedCategory"
	TrendService_GetSignificantChanges_FullMethodName   = "/camps.v1.TrendService/GetSignificantChanges"
	TrendService_ListCategories_FullMethodName          = "/camps.v1.TrendService/ListCategories"
	TrendService_RecalculateTrends_FullMethodName       = "/camps.v1.TrendService/RecalculateTrends"
	TrendService_SubmitRecalculation_FullMethodName     = "/camps.v1.TrendService/SubmitRecalculation"
	TrendService_GetRecalculationJob_FullMethodName     = "/camps.v1.TrendService/GetRecalculationJob"
)

// TrendServiceServer is the server API for camps.v1.TrendService.
type TrendServiceServer interface {
	GetTrends(context.Context, *TrendQuery) (*TrendsResponse, error)
	GetEmployeeTrends(context.Context, *TrendQuery) (*TrendsResponse, error)
	GetTeamTrends(context.Context, *TrendQuery) (*TrendsResponse, error)
	GetTeamAverages(context.Context, *TeamAveragesRequest) (*TeamAveragesResponse, error)
	GetTeamStats(context.Context, *TeamStatsRequest) (*TeamStatsResponse, error)
	GetMostImprovedCategory(context.Context, *MostImprovedCategoryRequest) (*MostImprovedCategoryResponse, error)
	GetSignificantChanges(context.Context, *SignificantChangesRequest) (*SignificantChangesResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	RecalculateTrends(context.Context, *RecalculateRequest) (*CalculationResult, error)
	SubmitRecalculation(context.Context, *RecalculateRequest) (*SubmitRecalculationResponse, error)
	GetRecalculationJob(context.Context, *GetRecalculationJobRequest) (*RecalculationJob, error)
}

// UnimplementedTrendServiceServer must be embedded to have forward compatible implementations.
type UnimplementedTrendServiceServer struct{}

func (UnimplementedTrendServiceServer) GetTrends(context.Context, *TrendQuery) (*TrendsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTrends not implemented")
}
func (UnimplementedTrendServiceServer) GetEmployeeTrends(context.Context, *TrendQuery) (*TrendsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetEmployeeTrends not implemented")
}
func (UnimplementedTrendServiceServer) GetTeamTrends(context.Context, *TrendQuery) (*TrendsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTeamTrends not implemented")
}
func (UnimplementedTrendServiceServer) GetTeamAverages(context.Context, *TeamAveragesRequest) (*TeamAveragesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTeamAverages not implemented")
}
func (UnimplementedTrendServiceServer) GetTeamStats(context.Context, *TeamStatsRequest) (*TeamStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTeamStats not implemented")
}
func (UnimplementedTrendServiceServer) GetMostImprovedCategory(context.Context, *MostImprovedCategoryRequest) (*MostImprovedCategoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetMostImprovedCategory not implemented")
}
func (UnimplementedTrendServiceServer) GetSignificantChanges(context.Context, *SignificantChangesRequest) (*SignificantChangesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSignificantChanges not implemented")
}
func (UnimplementedTrendServiceServer) ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListCategories not implemented")
}
func (UnimplementedTrendServiceServer) RecalculateTrends(context.Context, *RecalculateRequest) (*CalculationResult, error) {
	return nil, status.Error(codes.Unimplemented, "method RecalculateTrends not implemented")
}
func (UnimplementedTrendServiceServer) SubmitRecalculation(context.Context, *RecalculateRequest) (*SubmitRecalculationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitRecalculation not implemented")
}
func (UnimplementedTrendServiceServer) GetRecalculationJob(context.Context, *GetRecalculationJobRequest) (*RecalculationJob, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRecalculationJob not implemented")
}

func RegisterTrendServiceServer(s grpc.ServiceRegistrar, srv TrendServiceServer) {
	s.RegisterService(&TrendService_ServiceDesc, srv)
}

// unary adapts a typed server method to a grpc.MethodHandler.
func unary[Req any, Resp any](fullMethod string, call func(TrendServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TrendServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TrendServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// TrendService_ServiceDesc is the grpc.ServiceDesc for camps.v1.TrendService.
var TrendService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrendServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTrends", Handler: unary(TrendService_GetTrends_FullMethodName, TrendServiceServer.GetTrends)},
		{MethodName: "GetEmployeeTrends", Handler: unary(TrendService_GetEmployeeTrends_FullMethodName, TrendServiceServer.GetEmployeeTrends)},
		{MethodName: "GetTeamTrends", Handler: unary(TrendService_GetTeamTrends_FullMethodName, TrendServiceServer.GetTeamTrends)},
		{MethodName: "GetTeamAverages", Handler: unary(TrendService_GetTeamAverages_FullMethodName, TrendServiceServer.GetTeamAverages)},
		{MethodName: "GetTeamStats", Handler: unary(TrendService_GetTeamStats_FullMethodName, TrendServiceServer.GetTeamStats)},
		{MethodName: "GetMostImprovedCategory", Handler: unary(TrendService_GetMostImprovedCategory_FullMethodName, TrendServiceServer.GetMostImprovedCategory)},
		{MethodName: "GetSignificantChanges", Handler: unary(TrendService_GetSignificantChanges_FullMethodName, TrendServiceServer.GetSignificantChanges)},
		{MethodName: "ListCategories", Handler: unary(TrendService_ListCategories_FullMethodName, TrendServiceServer.ListCategories)},
		{MethodName: "RecalculateTrends", Handler: unary(TrendService_RecalculateTrends_FullMethodName, TrendServiceServer.RecalculateTrends)},
		{MethodName: "SubmitRecalculation", Handler: unary(TrendService_SubmitRecalculation_FullMethodName, TrendServiceServer.SubmitRecalculation)},
		{MethodName: "GetRecalculationJob", Handler: unary(TrendService_GetRecalculationJob_FullMethodName, TrendServiceServer.GetRecalculationJob)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "camps/v1/trend_service.proto",
}

// TrendServiceClient is the client API for camps.v1.TrendService.
type TrendServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTrendServiceClient(cc grpc.ClientConnInterface) *TrendServiceClient {
	return &TrendServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrendServiceClient) GetTrends(ctx context.Context, in *TrendQuery, opts ...grpc.CallOption) (*TrendsResponse, error) {
	return invoke[TrendsResponse](ctx, c.cc, TrendService_GetTrends_FullMethodName, in, opts)
}

func (c *TrendServiceClient) GetEmployeeTrends(ctx context.Context, in *TrendQuery, opts ...grpc.CallOption) (*TrendsResponse, error) {
	return invoke[TrendsResponse](ctx, c.cc, TrendService_GetEmployeeTrends_FullMethodName, in, opts)
}

func (c *TrendServiceClient) GetTeamTrends(ctx context.Context, in *TrendQuery, opts ...grpc.CallOption) (*TrendsResponse, error) {
	return invoke[TrendsResponse](ctx, c.cc, TrendService_GetTeamTrends_FullMethodName, in, opts)
}

func (c *TrendServiceClient) GetTeamAverages(ctx context.Context, in *TeamAveragesRequest, opts ...grpc.CallOption) (*TeamAveragesResponse, error) {
	return invoke[TeamAveragesResponse](ctx, c.cc, TrendService_GetTeamAverages_FullMethodName, in, opts)
}

func (c *TrendServiceClient) GetTeamStats(ctx context.Context, in *TeamStatsRequest, opts ...grpc.CallOption) (*TeamStatsResponse, error) {
	return invoke[TeamStatsResponse](ctx, c.cc, TrendService_GetTeamStats_FullMethodName, in, opts)
}

func (c *TrendServiceClient) GetMostImprovedCategory(ctx context.Context, in *MostImprovedCategoryRequest, opts ...grpc.CallOption) (*MostImprovedCategoryResponse, error) {
	return invoke[MostImprovedCategoryResponse](ctx, c.cc, TrendService_GetMostImprovedCategory_FullMethodName, in, opts)
}

func (c *TrendServiceClient) GetSignificantChanges(ctx context.Context, in *SignificantChangesRequest, opts ...grpc.CallOption) (*SignificantChangesResponse, error) {
	return invoke[SignificantChangesResponse](ctx, c.cc, TrendService_GetSignificantChanges_FullMethodName, in, opts)
}

func (c *TrendServiceClient) ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	return invoke[ListCategoriesResponse](ctx, c.cc, TrendService_ListCategories_FullMethodName, in, opts)
}

func (c *TrendServiceClient) RecalculateTrends(ctx context.Context, in *RecalculateRequest, opts ...grpc.CallOption) (*CalculationResult, error) {
	return invoke[CalculationResult](ctx, c.cc, TrendService_RecalculateTrends_FullMethodName, in, opts)
}

func (c *TrendServiceClient) SubmitRecalculation(ctx context.Context, in *RecalculateRequest, opts ...grpc.CallOption) (*SubmitRecalculationResponse, error) {
	return invoke[SubmitRecalculationResponse](ctx, c.cc, TrendService_SubmitRecalculation_FullMethodName, in, opts)
}

func (c *TrendServiceClient) GetRecalculationJob(ctx context.Context, in *GetRecalculationJobRequest, opts ...grpc.CallOption) (*RecalculationJob, error) {
	return invoke[RecalculationJob](ctx, c.cc, TrendService_GetRecalculationJob_FullMethodName, in, opts)
}
