package market

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "market.v1.MarketService"

const (
	MethodHealth            = "Health"
	MethodCreateListing     = "CreateListing"
	MethodGetListing        = "GetListing"
	MethodArchiveListing    = "ArchiveListing"
	MethodRelistListing     = "RelistListing"
	MethodTakeDownListing   = "TakeDownListing"
	MethodSearchListings    = "SearchListings"
	MethodStartConversation = "StartConversation"
	MethodGetConversation   = "GetConversation"
	MethodListConversations = "ListConversations"
	MethodSendMessage       = "SendMessage"
	MethodListMessages      = "ListMessages"
	MethodOfferSale         = "OfferSale"
	MethodConfirmSale       = "ConfirmSale"
	MethodGetSaleView       = "GetSaleView"
	MethodGetReviewPrompt   = "GetReviewPrompt"
	MethodSubmitReview      = "SubmitReview"
	MethodGetSellerReviews  = "GetSellerReviews"
	MethodReport            = "Report"
	MethodListReports       = "ListReports"
)

// FullMethod returns the "/service/method" name seen by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type MarketServiceServer interface {
	Health(context.Context, *Empty) (*HealthResponse, error)
	CreateListing(context.Context, *CreateListingRequest) (*ListingResponse, error)
	GetListing(context.Context, *ListingRequest) (*ListingResponse, error)
	ArchiveListing(context.Context, *ListingRequest) (*ListingResponse, error)
	RelistListing(context.Context, *ListingRequest) (*ListingResponse, error)
	TakeDownListing(context.Context, *TakeDownListingRequest) (*ListingResponse, error)
	SearchListings(context.Context, *SearchListingsRequest) (*ListingsResponse, error)
	StartConversation(context.Context, *StartConversationRequest) (*ConversationResponse, error)
	GetConversation(context.Context, *ConversationRequest) (*ConversationResponse, error)
	ListConversations(context.Context, *Empty) (*ConversationsResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*MessageResponse, error)
	ListMessages(context.Context, *ConversationRequest) (*MessagesResponse, error)
	OfferSale(context.Context, *ConversationRequest) (*MessageResponse, error)
	ConfirmSale(context.Context, *ConversationRequest) (*MessageResponse, error)
	GetSaleView(context.Context, *ConversationRequest) (*SaleViewResponse, error)
	GetReviewPrompt(context.Context, *ConversationRequest) (*ReviewPromptResponse, error)
	SubmitReview(context.Context, *SubmitReviewRequest) (*ReviewResponse, error)
	GetSellerReviews(context.Context, *SellerReviewsRequest) (*SellerReviewsResponse, error)
	Report(context.Context, *ReportRequest) (*ReportResponse, error)
	ListReports(context.Context, *Empty) (*ReportsResponse, error)
}

func RegisterMarketServiceServer(s grpc.ServiceRegistrar, srv MarketServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds the method handler the generated code would have produced
// for a single request/response call.
func unary[Req, Resp any](method string, call func(MarketServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MarketServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MarketServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MarketServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodHealth, MarketServiceServer.Health),
		unary(MethodCreateListing, MarketServiceServer.CreateListing),
		unary(MethodGetListing, MarketServiceServer.GetListing),
		unary(MethodArchiveListing, MarketServiceServer.ArchiveListing),
		unary(MethodRelistListing, MarketServiceServer.RelistListing),
		unary(MethodTakeDownListing, MarketServiceServer.TakeDownListing),
		unary(MethodSearchListings, MarketServiceServer.SearchListings),
		unary(MethodStartConversation, MarketServiceServer.StartConversation),
		unary(MethodGetConversation, MarketServiceServer.GetConversation),
		unary(MethodListConversations, MarketServiceServer.ListConversations),
		unary(MethodSendMessage, MarketServiceServer.SendMessage),
		unary(MethodListMessages, MarketServiceServer.ListMessages),
		unary(MethodOfferSale, MarketServiceServer.OfferSale),
		unary(MethodConfirmSale, MarketServiceServer.ConfirmSale),
		unary(MethodGetSaleView, MarketServiceServer.GetSaleView),
		unary(MethodGetReviewPrompt, MarketServiceServer.GetReviewPrompt),
		unary(MethodSubmitReview, MarketServiceServer.SubmitReview),
		unary(MethodGetSellerReviews, MarketServiceServer.GetSellerReviews),
		unary(MethodReport, MarketServiceServer.Report),
		unary(MethodListReports, MarketServiceServer.ListReports),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "market.v1",
}

// MarketServiceClient is the client API of the market service. Every call
// is sent with the CBOR content-subtype.
type MarketServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMarketServiceClient(cc grpc.ClientConnInterface) *MarketServiceClient {
	return &MarketServiceClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MarketServiceClient) Health(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*HealthResponse, error) {
	return invoke[Empty, HealthResponse](ctx, c.cc, MethodHealth, in, opts...)
}

func (c *MarketServiceClient) CreateListing(ctx context.Context, in *CreateListingRequest, opts ...grpc.CallOption) (*ListingResponse, error) {
	return invoke[CreateListingRequest, ListingResponse](ctx, c.cc, MethodCreateListing, in, opts...)
}

func (c *MarketServiceClient) GetListing(ctx context.Context, in *ListingRequest, opts ...grpc.CallOption) (*ListingResponse, error) {
	return invoke[ListingRequest, ListingResponse](ctx, c.cc, MethodGetListing, in, opts...)
}

func (c *MarketServiceClient) ArchiveListing(ctx context.Context, in *ListingRequest, opts ...grpc.CallOption) (*ListingResponse, error) {
	return invoke[ListingRequest, ListingResponse](ctx, c.cc, MethodArchiveListing, in, opts...)
}

func (c *MarketServiceClient) RelistListing(ctx context.Context, in *ListingRequest, opts ...grpc.CallOption) (*ListingResponse, error) {
	return invoke[ListingRequest, ListingResponse](ctx, c.cc, MethodRelistListing, in, opts...)
}

func (c *MarketServiceClient) TakeDownListing(ctx context.Context, in *TakeDownListingRequest, opts ...grpc.CallOption) (*ListingResponse, error) {
	return invoke[TakeDownListingRequest, ListingResponse](ctx, c.cc, MethodTakeDownListing, in, opts...)
}

func (c *MarketServiceClient) SearchListings(ctx context.Context, in *SearchListingsRequest, opts ...grpc.CallOption) (*ListingsResponse, error) {
	return invoke[SearchListingsRequest, ListingsResponse](ctx, c.cc, MethodSearchListings, in, opts...)
}

func (c *MarketServiceClient) StartConversation(ctx context.Context, in *StartConversationRequest, opts ...grpc.CallOption) (*ConversationResponse, error) {
	return invoke[StartConversationRequest, ConversationResponse](ctx, c.cc, MethodStartConversation, in, opts...)
}

func (c *MarketServiceClient) GetConversation(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*ConversationResponse, error) {
	return invoke[ConversationRequest, ConversationResponse](ctx, c.cc, MethodGetConversation, in, opts...)
}

func (c *MarketServiceClient) ListConversations(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ConversationsResponse, error) {
	return invoke[Empty, ConversationsResponse](ctx, c.cc, MethodListConversations, in, opts...)
}

func (c *MarketServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[SendMessageRequest, MessageResponse](ctx, c.cc, MethodSendMessage, in, opts...)
}

func (c *MarketServiceClient) ListMessages(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*MessagesResponse, error) {
	return invoke[ConversationRequest, MessagesResponse](ctx, c.cc, MethodListMessages, in, opts...)
}

func (c *MarketServiceClient) OfferSale(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[ConversationRequest, MessageResponse](ctx, c.cc, MethodOfferSale, in, opts...)
}

func (c *MarketServiceClient) ConfirmSale(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[ConversationRequest, MessageResponse](ctx, c.cc, MethodConfirmSale, in, opts...)
}

func (c *MarketServiceClient) GetSaleView(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*SaleViewResponse, error) {
	return invoke[ConversationRequest, SaleViewResponse](ctx, c.cc, MethodGetSaleView, in, opts...)
}

func (c *MarketServiceClient) GetReviewPrompt(ctx context.Context, in *ConversationRequest, opts ...grpc.CallOption) (*ReviewPromptResponse, error) {
	return invoke[ConversationRequest, ReviewPromptResponse](ctx, c.cc, MethodGetReviewPrompt, in, opts...)
}

func (c *MarketServiceClient) SubmitReview(ctx context.Context, in *SubmitReviewRequest, opts ...grpc.CallOption) (*ReviewResponse, error) {
	return invoke[SubmitReviewRequest, ReviewResponse](ctx, c.cc, MethodSubmitReview, in, opts...)
}

func (c *MarketServiceClient) GetSellerReviews(ctx context.Context, in *SellerReviewsRequest, opts ...grpc.CallOption) (*SellerReviewsResponse, error) {
	return invoke[SellerReviewsRequest, SellerReviewsResponse](ctx, c.cc, MethodGetSellerReviews, in, opts...)
}

func (c *MarketServiceClient) Report(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*ReportResponse, error) {
	return invoke[ReportRequest, ReportResponse](ctx, c.cc, MethodReport, in, opts...)
}

func (c *MarketServiceClient) ListReports(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ReportsResponse, error) {
	return invoke[Empty, ReportsResponse](ctx, c.cc, MethodListReports, in, opts...)
}
