package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	apiclient "github.com/MetehanCam/real-estate-social-app/pkg/api/client"
)

const defaultAPIBase = "http://localhost:4000"

type cliConfig struct {
	APIBaseURL  string `json:"api_base_url"`
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

var buildVersion = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "register":
		err = commandRegister(args)
	case "login":
		err = commandLogin(args)
	case "logout":
		err = commandLogout()
	case "whoami":
		err = commandWhoami()
	case "timeline":
		err = commandTimeline(args)
	case "post":
		err = commandPost(args)
	case "like":
		err = commandLike(args)
	case "comment":
		err = commandComment(args)
	case "delete":
		err = commandDelete(args)
	case "profile":
		err = commandProfile(args)
	case "version", "--version", "-v":
		printVersion()
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func commandRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	name := fs.String("name", "", "Full name")
	username := fs.String("username", "", "Username (defaults to the email local part)")
	location := fs.String("location", "", "Location")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default "+defaultAPIBase+")")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" || strings.TrimSpace(*name) == "" {
		return errors.New("--email and --name are required")
	}
	secret, err := readSecret(*password)
	if err != nil {
		return err
	}
	cfg, client, err := clientFor(*apiBase)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	session, err := client.Register(ctx, apiclient.RegisterRequest{
		Email:    *email,
		Password: secret,
		FullName: *name,
		Username: *username,
		Location: *location,
	})
	if err != nil {
		return err
	}
	cfg.AccessToken = session.Token
	cfg.UserID = session.User.ID
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("registered as %s (%s)\n", session.User.Username, session.User.Email)
	return nil
}

func commandLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default "+defaultAPIBase+")")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}
	secret, err := readSecret(*password)
	if err != nil {
		return err
	}
	cfg, client, err := clientFor(*apiBase)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	session, err := client.Login(ctx, *email, secret)
	if err != nil {
		return err
	}
	cfg.AccessToken = session.Token
	cfg.UserID = session.User.ID
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Println("login successful")
	return nil
}

func commandLogout() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.AccessToken = ""
	cfg.UserID = ""
	return saveConfig(cfg)
}

func commandWhoami() error {
	_, client, token, err := authedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	me, err := client.Me(ctx, token)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\nid: %s\nlocation: %s\nbio: %s\n", me.FullName, me.Email, me.ID, me.Location, me.Bio)
	return nil
}

func commandTimeline(args []string) error {
	fs := flag.NewFlagSet("timeline", flag.ExitOnError)
	userID := fs.String("user", "", "Only show posts by this user id")
	limit := fs.Int("limit", 20, "Maximum number of posts to display")
	asJSON := fs.Bool("json", false, "Print raw JSON")
	fs.Parse(args)

	_, client, err := clientFor("")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var posts []apiclient.Post
	if strings.TrimSpace(*userID) != "" {
		posts, err = client.UserPosts(ctx, *userID)
	} else {
		posts, err = client.Timeline(ctx)
	}
	if err != nil {
		return err
	}
	if *limit > 0 && len(posts) > *limit {
		posts = posts[:*limit]
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(posts)
	}
	return printPosts(os.Stdout, posts)
}

func printPosts(out io.Writer, posts []apiclient.Post) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(out, "no posts yet")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tLIKES\tCOMMENTS\tWHEN\tCONTENT")
	for _, p := range posts {
		author := p.Author.Username
		if author == "" {
			author = p.Author.FullName
		}
		fmt.Fprintf(w, "%s\t@%s\t%d\t%d\t%s\t%s\n", p.ID, author, len(p.Likes), len(p.Comments), p.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(p.Content, 60))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func commandPost(args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	content := fs.String("content", "", "Post text")
	image := fs.String("image", "", "Image URL")
	fs.Parse(args)

	text := strings.TrimSpace(*content)
	if text == "" && fs.NArg() > 0 {
		text = strings.Join(fs.Args(), " ")
	}
	if text == "" {
		return errors.New("--content is required")
	}
	_, client, token, err := authedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	created, err := client.CreatePost(ctx, token, text, *image)
	if err != nil {
		return err
	}
	fmt.Printf("posted %s\n", created.ID)
	return nil
}

func commandLike(args []string) error {
	fs := flag.NewFlagSet("like", flag.ExitOnError)
	postID := fs.String("post", "", "Post identifier")
	fs.Parse(args)
	if strings.TrimSpace(*postID) == "" {
		return errors.New("--post is required")
	}
	cfg, client, token, err := authedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	updated, err := client.ToggleLike(ctx, token, *postID)
	if err != nil {
		return err
	}
	state := "unliked"
	for _, id := range updated.Likes {
		if id == cfg.UserID {
			state = "liked"
			break
		}
	}
	fmt.Printf("%s %s (%d likes)\n", state, updated.ID, len(updated.Likes))
	return nil
}

func commandComment(args []string) error {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	postID := fs.String("post", "", "Post identifier")
	content := fs.String("content", "", "Comment text")
	fs.Parse(args)
	if strings.TrimSpace(*postID) == "" || strings.TrimSpace(*content) == "" {
		return errors.New("--post and --content are required")
	}
	_, client, token, err := authedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	comment, err := client.AddComment(ctx, token, *postID, *content)
	if err != nil {
		return err
	}
	fmt.Printf("comment %s added\n", comment.ID)
	return nil
}

func commandDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	postID := fs.String("post", "", "Post identifier")
	fs.Parse(args)
	if strings.TrimSpace(*postID) == "" {
		return errors.New("--post is required")
	}
	_, client, token, err := authedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := client.DeletePost(ctx, token, *postID); err != nil {
		return err
	}
	fmt.Println("post deleted")
	return nil
}

func commandProfile(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	var update apiclient.ProfileUpdate
	fs.Func("name", "Full name", func(v string) error { update.FullName = &v; return nil })
	fs.Func("bio", "Short bio", func(v string) error { update.Bio = &v; return nil })
	fs.Func("location", "Location", func(v string) error { update.Location = &v; return nil })
	fs.Func("avatar", "Avatar URL", func(v string) error { update.Avatar = &v; return nil })
	fs.Parse(args)

	_, client, token, err := authedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	me, err := client.UpdateProfile(ctx, token, update)
	if err != nil {
		return err
	}
	fmt.Printf("profile updated: %s, %s\n", me.FullName, me.Location)
	return nil
}

func readSecret(flagValue string) (string, error) {
	secret := strings.TrimSpace(flagValue)
	if secret != "" {
		return secret, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	fmt.Print("Password: ")
	bytes, err := term.ReadPassword(fd)
	fmt.Print("\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(bytes), nil
}

func clientFor(apiBase string) (cliConfig, *apiclient.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cliConfig{}, nil, err
	}
	if strings.TrimSpace(apiBase) != "" {
		cfg.APIBaseURL = apiBase
	}
	if env := strings.TrimSpace(os.Getenv("FEED_API")); env != "" && strings.TrimSpace(apiBase) == "" {
		cfg.APIBaseURL = env
	}
	client, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return cliConfig{}, nil, err
	}
	return cfg, client, nil
}

func authedClient() (cliConfig, *apiclient.Client, string, error) {
	cfg, client, err := clientFor("")
	if err != nil {
		return cliConfig{}, nil, "", err
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return cliConfig{}, nil, "", errors.New("please login first using 'feed login'")
	}
	return cfg, client, token, nil
}

func loadConfig() (cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return cliConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cliConfig{APIBaseURL: defaultAPIBase}, nil
		}
		return cliConfig{}, err
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, err
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBase
	}
	return cfg, nil
}

func saveConfig(cfg cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func configPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "estate-feed", "config.json"), nil
}

func printUsage() {
	fmt.Printf("feed CLI %s\n\n", buildVersion)
	fmt.Print(`Usage:
	feed register --email user@example.com --name "Full Name" [--username u] [--location l] [--password secret] [--api URL]
	feed login --email user@example.com [--password secret] [--api http://localhost:4000]
	feed logout
	feed whoami
	feed timeline [--user <user-id>] [--limit N] [--json]
	feed post --content "text" [--image URL]
	feed like --post <post-id>
	feed comment --post <post-id> --content "text"
	feed delete --post <post-id>
	feed profile [--name n] [--bio b] [--location l] [--avatar URL]
	feed version

The API base URL can also be set with FEED_API.
`)
}

func printVersion() {
	fmt.Println(strings.TrimSpace(buildVersion))
}
