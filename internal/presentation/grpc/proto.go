package grpc

// proto.go defines the gRPC server interface for smartmedishop/fraud/v1/fraud.proto.
// Messages travel with the JSON codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "smartmedishop.fraud.v1.FraudDetection"

// FraudDetectionServer is the server API for FraudDetection.
type FraudDetectionServer interface {
	AnalyzeTransaction(context.Context, *AnalyzeTransactionRequest) (*AnalyzeTransactionResponse, error)
	GetAnalysis(context.Context, *GetAnalysisRequest) (*GetAnalysisResponse, error)
	mustEmbedUnimplementedFraudDetectionServer()
}

// UnimplementedFraudDetectionServer provides forward-compatible default implementations.
type UnimplementedFraudDetectionServer struct{}

func (UnimplementedFraudDetectionServer) AnalyzeTransaction(context.Context, *AnalyzeTransactionRequest) (*AnalyzeTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AnalyzeTransaction not implemented")
}
func (UnimplementedFraudDetectionServer) GetAnalysis(context.Context, *GetAnalysisRequest) (*GetAnalysisResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAnalysis not implemented")
}
func (UnimplementedFraudDetectionServer) mustEmbedUnimplementedFraudDetectionServer() {}

// RegisterFraudDetectionServer registers the FraudDetectionServer with the gRPC server.
func RegisterFraudDetectionServer(s *grpclib.Server, srv FraudDetectionServer) {
	s.RegisterService(&_FraudDetection_serviceDesc, srv)
}

var _FraudDetection_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FraudDetectionServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "AnalyzeTransaction", Handler: _FraudDetection_AnalyzeTransaction_Handler},
		{MethodName: "GetAnalysis", Handler: _FraudDetection_GetAnalysis_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

func _FraudDetection_AnalyzeTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(AnalyzeTransactionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FraudDetectionServer).AnalyzeTransaction(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/AnalyzeTransaction",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FraudDetectionServer).AnalyzeTransaction(ctx, req.(*AnalyzeTransactionRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _FraudDetection_GetAnalysis_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetAnalysisRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FraudDetectionServer).GetAnalysis(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/GetAnalysis",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FraudDetectionServer).GetAnalysis(ctx, req.(*GetAnalysisRequest))
	}
	return interceptor(ctx, req, info, handler)
}
