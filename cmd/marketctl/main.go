package main

import (
	"campus-market/auth"
	"campus-market/domain"
	"campus-market/grpc/client"
	pb "campus-market/grpc/market"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
)

type command struct {
	usage string
	run   func(ctx context.Context, c *client.MarketClient, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"health":   {"", health},
		"listing":  {"--title T --category C [--price CENTS] [--description D]", createListing},
		"get":      {"LISTING_ID", getListing},
		"archive":  {"LISTING_ID", listingAction(false)},
		"relist":   {"LISTING_ID", listingAction(true)},
		"takedown": {"LISTING_ID [--reason R]", takeDownListing},
		"search":   {"QUERY [--category C] [--limit N]", searchListings},
		"chat":     {"(--listing ID | --seller ID)", startConversation},
		"inbox":    {"", listConversations},
		"send":     {"CONVERSATION_ID MESSAGE", sendMessage},
		"messages": {"CONVERSATION_ID", listMessages},
		"offer":    {"CONVERSATION_ID", offerSale},
		"confirm":  {"CONVERSATION_ID", confirmSale},
		"view":     {"CONVERSATION_ID", saleView},
		"review":   {"CONVERSATION_ID --rating N [--comment C]", submitReview},
		"reviews":  {"SELLER_ID", sellerReviews},
		"report":   {"--type (conversation|listing) --target ID --reason R [--detail D]", report},
		"reports":  {"", listReports},
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		color.Error.Println(err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if !config.Colours {
		color.Disable()
	}
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		printHelp()
		return nil
	}

	// token is the only command that does not talk to the server
	if args[0] == "token" {
		return issueToken(config, args[1:])
	}

	cmd, ok := commands[args[0]]
	if !ok {
		printHelp()
		return fmt.Errorf("unknown command %q", args[0])
	}

	c, err := client.NewMarketClient(config.Addr, config.Token)
	if err != nil {
		return fmt.Errorf("could not connect to server at %s: %w", config.Addr, err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()
	return cmd.run(c.WithAuth(ctx), c, args[1:])
}

func printHelp() {
	color.Bold.Println("marketctl - campus market command line")
	fmt.Println("\nUsage:\n  marketctl token USER_ID [--admin]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  marketctl %s %s\n", name, commands[name].usage)
	}
	fmt.Println("\nEnvironment: MARKET_ADDR, MARKET_TOKEN, MARKET_JWT_SECRET, MARKET_COLOURS")
}

func issueToken(config Config, args []string) error {
	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	admin := flagSet.Bool("admin", false, "grant the admin role")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: marketctl token USER_ID [--admin]")
	}
	tokens, err := auth.NewTokenIssuer(config.JWTSecret, config.TokenDuration)
	if err != nil {
		return err
	}
	roles := []string{auth.RoleStudent}
	if *admin {
		roles = append(roles, auth.RoleAdmin)
	}
	token, err := tokens.GenerateToken(auth.TokenRequest{UserID: flagSet.Arg(0), Roles: roles})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// positional returns the single positional argument of a command.
func positional(name string, args []string) (string, error) {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := flagSet.Parse(args); err != nil {
		return "", err
	}
	if flagSet.NArg() != 1 {
		return "", fmt.Errorf("usage: marketctl %s %s", name, commands[name].usage)
	}
	return flagSet.Arg(0), nil
}

func health(ctx context.Context, c *client.MarketClient, _ []string) error {
	stats, err := c.Health(ctx, &pb.Empty{})
	if err != nil {
		return err
	}
	table := newTable("PID", "Status", "CPU %", "RSS (MB)", "Goroutines", "Sent", "Failed", "Dropped", "Queue")
	table.Append([]string{
		strconv.Itoa(int(stats.PID)), stats.Status, fmt.Sprintf("%.1f", stats.CPUPercent),
		strconv.FormatUint(stats.RSSBytes/1024/1024, 10), strconv.Itoa(stats.Goroutines),
		strconv.FormatUint(stats.NotificationsSent, 10), strconv.FormatUint(stats.NotificationsFailed, 10),
		strconv.FormatUint(stats.NotificationsDropped, 10), fmt.Sprintf("%d/%d", stats.QueueLength, stats.QueueCapacity),
	})
	table.Render()
	return nil
}

func createListing(ctx context.Context, c *client.MarketClient, args []string) error {
	flagSet := pflag.NewFlagSet("listing", pflag.ContinueOnError)
	title := flagSet.String("title", "", "listing title")
	description := flagSet.String("description", "", "listing description")
	category := flagSet.String("category", "", "listing category")
	price := flagSet.Int64("price", 0, "price in cents")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	resp, err := c.CreateListing(ctx, &pb.CreateListingRequest{
		Title: *title, Description: *description, PriceCents: *price, Category: domain.Category(*category),
	})
	if err != nil {
		return err
	}
	printListings(resp.Listing)
	return nil
}

func getListing(ctx context.Context, c *client.MarketClient, args []string) error {
	id, err := positional("get", args)
	if err != nil {
		return err
	}
	resp, err := c.GetListing(ctx, &pb.ListingRequest{ListingID: id})
	if err != nil {
		return err
	}
	printListings(resp.Listing)
	return nil
}

func listingAction(relist bool) func(context.Context, *client.MarketClient, []string) error {
	return func(ctx context.Context, c *client.MarketClient, args []string) error {
		name, call := "archive", c.ArchiveListing
		if relist {
			name, call = "relist", c.RelistListing
		}
		id, err := positional(name, args)
		if err != nil {
			return err
		}
		resp, err := call(ctx, &pb.ListingRequest{ListingID: id})
		if err != nil {
			return err
		}
		printListings(resp.Listing)
		return nil
	}
}

func takeDownListing(ctx context.Context, c *client.MarketClient, args []string) error {
	flagSet := pflag.NewFlagSet("takedown", pflag.ContinueOnError)
	reason := flagSet.String("reason", "", "why the listing is taken down")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: marketctl takedown %s", commands["takedown"].usage)
	}
	resp, err := c.TakeDownListing(ctx, &pb.TakeDownListingRequest{ListingID: flagSet.Arg(0), Reason: *reason})
	if err != nil {
		return err
	}
	printListings(resp.Listing)
	return nil
}

func searchListings(ctx context.Context, c *client.MarketClient, args []string) error {
	flagSet := pflag.NewFlagSet("search", pflag.ContinueOnError)
	category := flagSet.String("category", "", "restrict to a category")
	limit := flagSet.Int("limit", 0, "maximum number of results")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	query := ""
	if flagSet.NArg() > 0 {
		query = flagSet.Arg(0)
	}
	resp, err := c.SearchListings(ctx, &pb.SearchListingsRequest{Query: query, Category: domain.Category(*category), Limit: *limit})
	if err != nil {
		return err
	}
	printListings(resp.Listings...)
	return nil
}

func startConversation(ctx context.Context, c *client.MarketClient, args []string) error {
	flagSet := pflag.NewFlagSet("chat", pflag.ContinueOnError)
	listing := flagSet.String("listing", "", "listing to ask about")
	seller := flagSet.String("seller", "", "seller to message directly")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	resp, err := c.StartConversation(ctx, &pb.StartConversationRequest{ListingID: *listing, SellerID: *seller})
	if err != nil {
		return err
	}
	color.Green.Printf("conversation %s (buyer %s, seller %s)\n",
		resp.Conversation.ID, resp.Conversation.BuyerID, resp.Conversation.SellerID)
	return nil
}

func listConversations(ctx context.Context, c *client.MarketClient, _ []string) error {
	resp, err := c.ListConversations(ctx, &pb.Empty{})
	if err != nil {
		return err
	}
	table := newTable("ID", "Listing", "Buyer", "Seller", "Started")
	for _, conversation := range resp.Conversations {
		listing := conversation.ListingID
		if listing == "" {
			listing = "(direct)"
		}
		table.Append([]string{conversation.ID, listing, conversation.BuyerID, conversation.SellerID,
			conversation.CreatedAt.Format(time.DateTime)})
	}
	table.Render()
	return nil
}

func sendMessage(ctx context.Context, c *client.MarketClient, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: marketctl send %s", commands["send"].usage)
	}
	resp, err := c.SendMessage(ctx, &pb.SendMessageRequest{ConversationID: args[0], Content: args[1]})
	if err != nil {
		return err
	}
	printMessages(resp.Message)
	return nil
}

func listMessages(ctx context.Context, c *client.MarketClient, args []string) error {
	id, err := positional("messages", args)
	if err != nil {
		return err
	}
	resp, err := c.ListMessages(ctx, &pb.ConversationRequest{ConversationID: id})
	if err != nil {
		return err
	}
	printMessages(resp.Messages...)
	return nil
}

func offerSale(ctx context.Context, c *client.MarketClient, args []string) error {
	id, err := positional("offer", args)
	if err != nil {
		return err
	}
	resp, err := c.OfferSale(ctx, &pb.ConversationRequest{ConversationID: id})
	if err != nil {
		return err
	}
	printMessages(resp.Message)
	return nil
}

func confirmSale(ctx context.Context, c *client.MarketClient, args []string) error {
	id, err := positional("confirm", args)
	if err != nil {
		return err
	}
	resp, err := c.ConfirmSale(ctx, &pb.ConversationRequest{ConversationID: id})
	if err != nil {
		return err
	}
	printMessages(resp.Message)
	return nil
}

func saleView(ctx context.Context, c *client.MarketClient, args []string) error {
	id, err := positional("view", args)
	if err != nil {
		return err
	}
	resp, err := c.GetSaleView(ctx, &pb.ConversationRequest{ConversationID: id})
	if err != nil {
		return err
	}
	table := newTable("State", "Role", "Can offer", "Can confirm", "Review prompt")
	table.Append([]string{
		resp.View.State.String(), string(resp.View.Role), strconv.FormatBool(resp.View.CanOffer),
		strconv.FormatBool(resp.View.CanConfirm), strconv.FormatBool(resp.View.ShowReviewPrompt),
	})
	table.Render()
	return nil
}

func submitReview(ctx context.Context, c *client.MarketClient, args []string) error {
	flagSet := pflag.NewFlagSet("review", pflag.ContinueOnError)
	rating := flagSet.Int("rating", 0, "rating from 1 to 5")
	comment := flagSet.String("comment", "", "optional comment")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: marketctl review %s", commands["review"].usage)
	}
	resp, err := c.SubmitReview(ctx, &pb.SubmitReviewRequest{ConversationID: flagSet.Arg(0), Rating: *rating, Comment: *comment})
	if err != nil {
		return err
	}
	color.Green.Printf("review %s recorded for seller %s\n", resp.Review.ID, resp.Review.SellerID)
	return nil
}

func sellerReviews(ctx context.Context, c *client.MarketClient, args []string) error {
	id, err := positional("reviews", args)
	if err != nil {
		return err
	}
	resp, err := c.GetSellerReviews(ctx, &pb.SellerReviewsRequest{SellerID: id})
	if err != nil {
		return err
	}
	color.Bold.Printf("%.2f / 5 (%d reviews)\n", resp.Rating.Average, resp.Rating.Count)
	table := newTable("Reviewer", "Listing", "Rating", "Comment", "At")
	for _, r := range resp.Rating.Reviews {
		table.Append([]string{r.ReviewerID, r.ListingID, strconv.Itoa(r.Rating), r.Comment, r.CreatedAt.Format(time.DateTime)})
	}
	table.Render()
	return nil
}

func report(ctx context.Context, c *client.MarketClient, args []string) error {
	flagSet := pflag.NewFlagSet("report", pflag.ContinueOnError)
	targetType := flagSet.String("type", "", "conversation or listing")
	target := flagSet.String("target", "", "reported conversation or listing id")
	reason := flagSet.String("reason", "", "spam, scam, inappropriate, harassment, prohibited_item or other")
	detail := flagSet.String("detail", "", "free text")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	resp, err := c.Report(ctx, &pb.ReportRequest{
		TargetType: domain.ReportTarget(*targetType), TargetID: *target,
		Reason: domain.ReportReason(*reason), Detail: *detail,
	})
	if err != nil {
		return err
	}
	color.Green.Printf("report %s recorded\n", resp.Report.ID)
	return nil
}

func listReports(ctx context.Context, c *client.MarketClient, _ []string) error {
	resp, err := c.ListReports(ctx, &pb.Empty{})
	if err != nil {
		return err
	}
	table := newTable("ID", "Reporter", "Type", "Target", "Reason", "Detail", "At")
	for _, r := range resp.Reports {
		table.Append([]string{r.ID, r.ReporterID, string(r.TargetType), r.TargetID, string(r.Reason), r.Detail,
			r.CreatedAt.Format(time.DateTime)})
	}
	table.Render()
	return nil
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func printListings(listings ...domain.Listing) {
	table := newTable("ID", "Title", "Category", "Price", "Status", "Seller", "Sold")
	for _, l := range listings {
		table.Append([]string{l.ID, l.Title, string(l.Category), fmt.Sprintf("%.2f", float64(l.PriceCents)/100),
			string(l.Status), l.SellerID, strconv.Itoa(l.TimesSold)})
	}
	table.Render()
}

func printMessages(messages ...domain.Message) {
	for _, m := range messages {
		at := m.CreatedAt.Format(time.TimeOnly)
		switch m.Type {
		case domain.MessageText:
			fmt.Printf("%s %s: %s\n", color.Gray.Render(at), color.Cyan.Render(m.SenderID), m.Content)
		default:
			fmt.Printf("%s %s: %s\n", color.Gray.Render(at), color.Cyan.Render(m.SenderID), color.Yellow.Render(m.Content))
		}
	}
}
