// Package pb points.v1 サービスのgRPC定義（proto/points/v1/qrcode_service.proto）
//
// メッセージはすべて google.protobuf.Struct のため、生成コードの代わりに
// サービス記述子を手で保守している。
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	QRCodeServiceName = "points.v1.QRCodeService"
	AdminServiceName  = "points.v1.AdminService"

	QRCodeService_AssignPoints_FullMethodName     = "/points.v1.QRCodeService/AssignPoints"
	QRCodeService_RedeemPrize_FullMethodName      = "/points.v1.QRCodeService/RedeemPrize"
	QRCodeService_Scan_FullMethodName             = "/points.v1.QRCodeService/Scan"
	QRCodeService_GetPoints_FullMethodName        = "/points.v1.QRCodeService/GetPoints"
	QRCodeService_ListTransactions_FullMethodName = "/points.v1.QRCodeService/ListTransactions"

	AdminService_CountPendingTokens_FullMethodName = "/points.v1.AdminService/CountPendingTokens"
	AdminService_SweepPendingTokens_FullMethodName = "/points.v1.AdminService/SweepPendingTokens"
)

// QRCodeServiceServer QRCodeServiceのサーバー実装
type QRCodeServiceServer interface {
	AssignPoints(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RedeemPrize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Scan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPoints(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// AdminServiceServer AdminServiceのサーバー実装
type AdminServiceServer interface {
	CountPendingTokens(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SweepPendingTokens(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// unaryHandler Structを受け取りStructを返すメソッドのハンドラー
func unaryHandler[S any](fullMethod string, call func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// QRCodeService_ServiceDesc points.v1.QRCodeService のサービス記述子
var QRCodeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: QRCodeServiceName,
	HandlerType: (*QRCodeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AssignPoints", Handler: unaryHandler(QRCodeService_AssignPoints_FullMethodName, QRCodeServiceServer.AssignPoints)},
		{MethodName: "RedeemPrize", Handler: unaryHandler(QRCodeService_RedeemPrize_FullMethodName, QRCodeServiceServer.RedeemPrize)},
		{MethodName: "Scan", Handler: unaryHandler(QRCodeService_Scan_FullMethodName, QRCodeServiceServer.Scan)},
		{MethodName: "GetPoints", Handler: unaryHandler(QRCodeService_GetPoints_FullMethodName, QRCodeServiceServer.GetPoints)},
		{MethodName: "ListTransactions", Handler: unaryHandler(QRCodeService_ListTransactions_FullMethodName, QRCodeServiceServer.ListTransactions)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "points/v1/qrcode_service.proto",
}

// AdminService_ServiceDesc points.v1.AdminService のサービス記述子
var AdminService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CountPendingTokens", Handler: unaryHandler(AdminService_CountPendingTokens_FullMethodName, AdminServiceServer.CountPendingTokens)},
		{MethodName: "SweepPendingTokens", Handler: unaryHandler(AdminService_SweepPendingTokens_FullMethodName, AdminServiceServer.SweepPendingTokens)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "points/v1/qrcode_service.proto",
}

// RegisterQRCodeServiceServer QRCodeServiceを登録
func RegisterQRCodeServiceServer(s grpc.ServiceRegistrar, srv QRCodeServiceServer) {
	s.RegisterService(&QRCodeService_ServiceDesc, srv)
}

// RegisterAdminServiceServer AdminServiceを登録
func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&AdminService_ServiceDesc, srv)
}

// Client points.v1 の両サービスを呼び出すクライアント
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient 新しいClientを作成
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AssignPoints(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, QRCodeService_AssignPoints_FullMethodName, in, opts...)
}

func (c *Client) RedeemPrize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, QRCodeService_RedeemPrize_FullMethodName, in, opts...)
}

func (c *Client) Scan(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, QRCodeService_Scan_FullMethodName, in, opts...)
}

func (c *Client) GetPoints(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, QRCodeService_GetPoints_FullMethodName, in, opts...)
}

func (c *Client) ListTransactions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, QRCodeService_ListTransactions_FullMethodName, in, opts...)
}

func (c *Client) CountPendingTokens(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AdminService_CountPendingTokens_FullMethodName, in, opts...)
}

func (c *Client) SweepPendingTokens(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AdminService_SweepPendingTokens_FullMethodName, in, opts...)
}
