package e2e

import (
	"campus-market/auth"
	pb "campus-market/grpc/market"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type BaseGrpcSuite struct {
	suite.Suite
	Config Config
	tokens *auth.TokenIssuer
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseGrpcSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.Addr == "" {
		s.T().Skip("MARKET_E2E_ADDR is not set")
	}
	s.tokens, err = auth.NewTokenIssuer(s.Config.JWTSecret, time.Hour)
	s.Require().NoError(err)
}

// GrpcConn initializes a gRPC connection with logging, colors, and CBOR debugging
func (s *BaseGrpcSuite) GrpcConn(t *testing.T, name string, addr string) *grpc.ClientConn {
	// 1. Print a colorized header for the connection step in logs
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	// 2. Create the client with a Unary Interceptor for logging
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))

			// Log full request/response bodies if E2E_DEBUG_CBOR is enabled
			if s.Config.DebugCBOR {
				fmt.Fprintln(&logBuilder, "\nREQUEST:")
				fmt.Fprintln(&logBuilder, diagnose(req))
				if err != nil {
					fmt.Fprintln(&logBuilder, "ERROR:", err)
				} else {
					fmt.Fprintln(&logBuilder, "RESPONSE:")
					fmt.Fprintln(&logBuilder, diagnose(reply))
				}
			}
			t.Log(logBuilder.String())
			return err
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+addr)
	return conn
}

func diagnose(v any) string {
	b, err := pb.Codec{}.Marshal(v)
	if err != nil {
		return err.Error()
	}
	out, err := cbor.Diagnose(b)
	if err != nil {
		return err.Error()
	}
	return out
}

// WithUser provides a market client authenticated as userID within a contextual test step
func (s *BaseGrpcSuite) WithUser(name, userID string, fn func(ctx context.Context, client *pb.MarketServiceClient)) {
	conn := s.GrpcConn(s.T(), name, s.Config.Addr)
	defer conn.Close()

	token, err := s.tokens.GenerateToken(auth.TokenRequest{UserID: userID})
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)

	fn(ctx, pb.NewMarketServiceClient(conn))
}
