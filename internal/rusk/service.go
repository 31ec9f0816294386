package rusk

import (
    "context"

    "google.golang.org/grpc"

    "github.com/grutesr1/DUSK-test/internal/dusk"
)

const (
    stateService  = "rusk.State"
    proverService = "rusk.Prover"

    methodHeight    = "/" + stateService + "/Height"
    methodNotes     = "/" + stateService + "/Notes"
    methodStake     = "/" + stateService + "/Stake"
    methodPropagate = "/" + stateService + "/Propagate"
    methodProve     = "/" + proverService + "/Prove"
)

type HeightRequest struct{}

type HeightResponse struct {
    Height uint64 `cbor:"1,keyasint"`
}

type NotesRequest struct {
    ViewKey dusk.ViewKey `cbor:"1,keyasint"`
    From    uint64       `cbor:"2,keyasint"`
}

type NotesResponse struct {
    Notes  []dusk.Note `cbor:"1,keyasint"`
    Height uint64      `cbor:"2,keyasint"`
}

type StakeRequest struct {
    Key dusk.Address `cbor:"1,keyasint"`
}

type StakeResponse struct {
    Stake dusk.Stake `cbor:"1,keyasint"`
}

type PropagateRequest struct {
    Tx dusk.ProvenTx `cbor:"1,keyasint"`
}

type PropagateResponse struct{}

type ProveRequest struct {
    Tx dusk.Tx `cbor:"1,keyasint"`
}

// ProveResponse carries either a proven transaction or the verifier's reason
// for refusing it.
type ProveResponse struct {
    Tx       dusk.ProvenTx `cbor:"1,keyasint"`
    Rejected string        `cbor:"2,keyasint,omitempty"`
}

// StateServer is implemented by a node exposing chain state.
type StateServer interface {
    Height(context.Context, *HeightRequest) (*HeightResponse, error)
    Notes(context.Context, *NotesRequest) (*NotesResponse, error)
    Stake(context.Context, *StakeRequest) (*StakeResponse, error)
    Propagate(context.Context, *PropagateRequest) (*PropagateResponse, error)
}

// ProverServer is implemented by a proving service.
type ProverServer interface {
    Prove(context.Context, *ProveRequest) (*ProveResponse, error)
}

// RegisterStateServer attaches impl to s. The server must be built with ServerOptions.
func RegisterStateServer(s *grpc.Server, impl StateServer) {
    s.RegisterService(&grpc.ServiceDesc{
        ServiceName: stateService,
        HandlerType: (*StateServer)(nil),
        Methods: []grpc.MethodDesc{
            unary(methodHeight, StateServer.Height),
            unary(methodNotes, StateServer.Notes),
            unary(methodStake, StateServer.Stake),
            unary(methodPropagate, StateServer.Propagate),
        },
    }, impl)
}

// RegisterProverServer attaches impl to s.
func RegisterProverServer(s *grpc.Server, impl ProverServer) {
    s.RegisterService(&grpc.ServiceDesc{
        ServiceName: proverService,
        HandlerType: (*ProverServer)(nil),
        Methods: []grpc.MethodDesc{
            unary(methodProve, ProverServer.Prove),
        },
    }, impl)
}

// ServerOptions returns the options a server needs to speak to these clients.
func ServerOptions() []grpc.ServerOption {
    return []grpc.ServerOption{grpc.ForceServerCodec(cborCodec{})}
}

// unary builds a method descriptor around a typed handler.
func unary[S, Req, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
    return grpc.MethodDesc{
        MethodName: methodName(fullMethod),
        Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
            in := new(Req)
            if err := dec(in); err != nil {
                return nil, err
            }
            if interceptor == nil {
                return call(srv.(S), ctx, in)
            }
            info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
            handler := func(ctx context.Context, req any) (any, error) {
                return call(srv.(S), ctx, req.(*Req))
            }
            return interceptor(ctx, in, info, handler)
        },
    }
}

func methodName(fullMethod string) string {
    for i := len(fullMethod) - 1; i >= 0; i-- {
        if fullMethod[i] == '/' {
            return fullMethod[i+1:]
        }
    }
    return fullMethod
}
