package api

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/dmitrijs2005/gopherblog/internal/server/services"
	graphql "github.com/graph-gophers/graphql-go"
)

// timeLayout renders timestamps as UTC ISO-8601 with milliseconds.
const timeLayout = "2006-01-02T15:04:05.000Z"

// rootResolver serves both RootQuery and RootMutation.
type rootResolver struct {
	users *services.UserService
	posts *services.PostService
}

type userInputData struct {
	Email    string
	Name     string
	Password string
}

type postInputData struct {
	Title    string
	Content  string
	ImageURL *string
}

func (in postInputData) toService() services.PostInput {
	return services.PostInput{Title: in.Title, Content: in.Content, ImageURL: in.ImageURL}
}

func (r *rootResolver) Login(ctx context.Context, args struct{ Email, Password string }) (*authDataResolver, error) {
	data, err := r.users.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, err
	}
	return &authDataResolver{data: data}, nil
}

func (r *rootResolver) Posts(ctx context.Context, args struct{ Page *int32 }) (*postDataResolver, error) {
	page := 1
	if args.Page != nil {
		page = int(*args.Page)
	}

	res, err := r.posts.List(ctx, auth.FromContext(ctx), page)
	if err != nil {
		return nil, err
	}
	return &postDataResolver{root: r, page: res}, nil
}

func (r *rootResolver) Post(ctx context.Context, args struct{ ID graphql.ID }) (*postResolver, error) {
	p, err := r.posts.Get(ctx, auth.FromContext(ctx), string(args.ID))
	if err != nil {
		return nil, err
	}
	return &postResolver{root: r, post: p}, nil
}

func (r *rootResolver) User(ctx context.Context) (*userResolver, error) {
	u, err := r.users.User(ctx, auth.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	return &userResolver{root: r, user: u}, nil
}

func (r *rootResolver) CreateUser(ctx context.Context, args struct{ UserInput userInputData }) (*userResolver, error) {
	u, err := r.users.CreateUser(ctx, args.UserInput.Email, args.UserInput.Name, args.UserInput.Password)
	if err != nil {
		return nil, err
	}
	return &userResolver{root: r, user: u}, nil
}

func (r *rootResolver) CreatePost(ctx context.Context, args struct{ PostInput postInputData }) (*postResolver, error) {
	p, err := r.posts.Create(ctx, auth.FromContext(ctx), args.PostInput.toService())
	if err != nil {
		return nil, err
	}
	return &postResolver{root: r, post: p}, nil
}

func (r *rootResolver) UpdatePost(ctx context.Context, args struct {
	ID        graphql.ID
	PostInput postInputData
}) (*postResolver, error) {
	p, err := r.posts.Update(ctx, auth.FromContext(ctx), string(args.ID), args.PostInput.toService())
	if err != nil {
		return nil, err
	}
	return &postResolver{root: r, post: p}, nil
}

func (r *rootResolver) DeletePost(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.posts.Delete(ctx, auth.FromContext(ctx), string(args.ID)); err != nil {
		return false, err
	}
	return true, nil
}

func (r *rootResolver) UpdateStatus(ctx context.Context, args struct{ Status string }) (*userResolver, error) {
	u, err := r.users.UpdateStatus(ctx, auth.FromContext(ctx), args.Status)
	if err != nil {
		return nil, err
	}
	return &userResolver{root: r, user: u}, nil
}

type authDataResolver struct {
	data *services.AuthData
}

func (a *authDataResolver) Token() string  { return a.data.Token }
func (a *authDataResolver) UserID() string { return a.data.UserID }

type postDataResolver struct {
	root *rootResolver
	page *services.PostPage
}

func (p *postDataResolver) Posts() []*postResolver {
	out := make([]*postResolver, 0, len(p.page.Posts))
	for _, post := range p.page.Posts {
		out = append(out, &postResolver{root: p.root, post: post})
	}
	return out
}

func (p *postDataResolver) TotalPosts() int32 { return int32(p.page.Total) }
func (p *postDataResolver) HasNext() bool     { return p.page.HasNext }

type postResolver struct {
	root *rootResolver
	post *models.Post
}

func (p *postResolver) ID() graphql.ID    { return graphql.ID(p.post.ID) }
func (p *postResolver) Title() string     { return p.post.Title }
func (p *postResolver) Content() string   { return p.post.Content }
func (p *postResolver) ImageURL() string  { return p.post.ImageURL }
func (p *postResolver) CreatedAt() string { return formatTime(p.post.CreatedAt) }
func (p *postResolver) UpdatedAt() string { return formatTime(p.post.UpdatedAt) }

// Creator falls back to an id-only user when the post was loaded without
// its author.
func (p *postResolver) Creator() *userResolver {
	u := p.post.Creator
	if u == nil {
		u = &models.User{ID: p.post.CreatorID}
	}
	return &userResolver{root: p.root, user: u}
}

type userResolver struct {
	root *rootResolver
	user *models.User
}

func (u *userResolver) ID() graphql.ID { return graphql.ID(u.user.ID) }
func (u *userResolver) Name() string   { return u.user.Name }
func (u *userResolver) Email() string  { return u.user.Email }
func (u *userResolver) Status() string { return u.user.Status }

func (u *userResolver) Posts(ctx context.Context) ([]*postResolver, error) {
	posts, err := u.root.users.Posts(ctx, u.user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*postResolver, 0, len(posts))
	for _, p := range posts {
		out = append(out, &postResolver{root: u.root, post: p})
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
