package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Сервис Catalog использует стандартные типы protobuf, поэтому описание
// сервиса задано вручную, без сгенерированного кода.
const (
	CatalogServiceName = "filmorate.v1.Catalog"

	FilmExistsMethod   = "/" + CatalogServiceName + "/FilmExists"
	UserExistsMethod   = "/" + CatalogServiceName + "/UserExists"
	GetFilmMethod      = "/" + CatalogServiceName + "/GetFilm"
	PopularFilmsMethod = "/" + CatalogServiceName + "/PopularFilms"
)

// CatalogServer серверная часть filmorate.v1.Catalog.
type CatalogServer interface {
	FilmExists(context.Context, *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
	UserExists(context.Context, *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
	GetFilm(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	PopularFilms(context.Context, *wrapperspb.Int64Value) (*structpb.ListValue, error)
}

// RegisterCatalogServer регистрирует реализацию на gRPC сервере.
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

// CatalogServiceDesc описание сервиса для grpc.Server.
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FilmExists", Handler: filmExistsHandler},
		{MethodName: "UserExists", Handler: userExistsHandler},
		{MethodName: "GetFilm", Handler: getFilmHandler},
		{MethodName: "PopularFilms", Handler: popularFilmsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "filmorate/v1/catalog.proto",
}

func filmExistsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).FilmExists(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FilmExistsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).FilmExists(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func userExistsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).UserExists(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: UserExistsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).UserExists(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getFilmHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetFilm(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetFilmMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).GetFilm(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func popularFilmsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).PopularFilms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PopularFilmsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).PopularFilms(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}
