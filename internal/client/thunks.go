package client

import (
	"context"
	"errors"

	"devconnect/internal/posts"
	"devconnect/internal/profiles"
	"devconnect/internal/users"
)

// Actions runs API calls and dispatches their outcome into a Store.
type Actions struct {
	api   *Client
	store *Store
}

// NewActions binds api and store. api should read its token from
// store.Storage() so dispatched logins take effect on the next call.
func NewActions(api *Client, store *Store) *Actions {
	return &Actions{api: api, store: store}
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Msg: err.Error()}
}

// LoadUser fetches the user behind the stored token.
func (a *Actions) LoadUser(ctx context.Context) error {
	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		a.store.Dispatch(Action{Type: AuthError})
		return err
	}
	a.store.Dispatch(Action{Type: UserLoaded, Payload: user})
	return nil
}

// Register signs up and loads the new user.
func (a *Actions) Register(ctx context.Context, in users.RegisterInput) error {
	token, err := a.api.Register(ctx, in)
	if err != nil {
		a.store.Dispatch(Action{Type: RegisterFail, Payload: asAPIError(err)})
		return err
	}
	a.store.Dispatch(Action{Type: RegisterSuccess, Payload: TokenPayload{Token: token}})
	return a.LoadUser(ctx)
}

// Login signs in and loads the user.
func (a *Actions) Login(ctx context.Context, in users.LoginInput) error {
	token, err := a.api.Login(ctx, in)
	if err != nil {
		a.store.Dispatch(Action{Type: LoginFail, Payload: asAPIError(err)})
		return err
	}
	a.store.Dispatch(Action{Type: LoginSuccess, Payload: TokenPayload{Token: token}})
	return a.LoadUser(ctx)
}

// Logout forgets the session and the current profile.
func (a *Actions) Logout() {
	a.store.Dispatch(Action{Type: ClearProfile})
	a.store.Dispatch(Action{Type: Logout})
}

func (a *Actions) profileResult(p *profiles.Profile, err error, success ActionType) error {
	if err != nil {
		a.store.Dispatch(Action{Type: ProfileError, Payload: asAPIError(err)})
		return err
	}
	a.store.Dispatch(Action{Type: success, Payload: p})
	return nil
}

// GetCurrentProfile loads the caller's profile.
func (a *Actions) GetCurrentProfile(ctx context.Context) error {
	p, err := a.api.CurrentProfile(ctx)
	return a.profileResult(p, err, GetProfile)
}

// GetProfiles loads the profile directory.
func (a *Actions) GetProfiles(ctx context.Context) error {
	a.store.Dispatch(Action{Type: ClearProfile})
	list, err := a.api.Profiles(ctx)
	if err != nil {
		a.store.Dispatch(Action{Type: ProfileError, Payload: asAPIError(err)})
		return err
	}
	a.store.Dispatch(Action{Type: GetProfiles, Payload: list})
	return nil
}

// GetProfileByID loads the profile owned by userID.
func (a *Actions) GetProfileByID(ctx context.Context, userID string) error {
	p, err := a.api.ProfileByUserID(ctx, userID)
	return a.profileResult(p, err, GetProfile)
}

// CreateProfile creates or updates the caller's profile.
func (a *Actions) CreateProfile(ctx context.Context, in profiles.Input) error {
	p, err := a.api.UpsertProfile(ctx, in)
	return a.profileResult(p, err, GetProfile)
}

// AddExperience adds an experience entry.
func (a *Actions) AddExperience(ctx context.Context, in profiles.ExperienceInput) error {
	p, err := a.api.AddExperience(ctx, in)
	return a.profileResult(p, err, UpdateProfile)
}

// AddEducation adds an education entry.
func (a *Actions) AddEducation(ctx context.Context, in profiles.EducationInput) error {
	p, err := a.api.AddEducation(ctx, in)
	return a.profileResult(p, err, UpdateProfile)
}

// DeleteExperience removes an experience entry.
func (a *Actions) DeleteExperience(ctx context.Context, id string) error {
	p, err := a.api.DeleteExperience(ctx, id)
	return a.profileResult(p, err, UpdateProfile)
}

// DeleteEducation removes an education entry.
func (a *Actions) DeleteEducation(ctx context.Context, id string) error {
	p, err := a.api.DeleteEducation(ctx, id)
	return a.profileResult(p, err, UpdateProfile)
}

// DeleteAccount removes the account and ends the session.
func (a *Actions) DeleteAccount(ctx context.Context) error {
	if err := a.api.DeleteAccount(ctx); err != nil {
		a.store.Dispatch(Action{Type: ProfileError, Payload: asAPIError(err)})
		return err
	}
	a.store.Dispatch(Action{Type: ClearProfile})
	a.store.Dispatch(Action{Type: AccountDeleted})
	return nil
}

func (a *Actions) postError(err error) error {
	a.store.Dispatch(Action{Type: PostError, Payload: asAPIError(err)})
	return err
}

// GetPosts loads the feed.
func (a *Actions) GetPosts(ctx context.Context) error {
	list, err := a.api.Posts(ctx)
	if err != nil {
		return a.postError(err)
	}
	a.store.Dispatch(Action{Type: GetPosts, Payload: list})
	return nil
}

// GetPost loads a single post.
func (a *Actions) GetPost(ctx context.Context, id string) error {
	p, err := a.api.Post(ctx, id)
	if err != nil {
		return a.postError(err)
	}
	a.store.Dispatch(Action{Type: GetPost, Payload: p})
	return nil
}

// AddPost publishes a post.
func (a *Actions) AddPost(ctx context.Context, in posts.TextInput) error {
	p, err := a.api.AddPost(ctx, in)
	if err != nil {
		return a.postError(err)
	}
	a.store.Dispatch(Action{Type: AddPost, Payload: p})
	return nil
}

// DeletePost removes a post.
func (a *Actions) DeletePost(ctx context.Context, id string) error {
	if err := a.api.DeletePost(ctx, id); err != nil {
		return a.postError(err)
	}
	a.store.Dispatch(Action{Type: DeletePost, Payload: id})
	return nil
}

// AddLike likes a post.
func (a *Actions) AddLike(ctx context.Context, id string) error {
	likes, err := a.api.Like(ctx, id)
	if err != nil {
		return a.postError(err)
	}
	a.store.Dispatch(Action{Type: UpdateLikes, Payload: LikesPayload{PostID: id, Likes: likes}})
	return nil
}

// RemoveLike unlikes a post.
func (a *Actions) RemoveLike(ctx context.Context, id string) error {
	likes, err := a.api.Unlike(ctx, id)
	if err != nil {
		return a.postError(err)
	}
	a.store.Dispatch(Action{Type: UpdateLikes, Payload: LikesPayload{PostID: id, Likes: likes}})
	return nil
}

// AddComment comments on a post.
func (a *Actions) AddComment(ctx context.Context, postID string, in posts.TextInput) error {
	comments, err := a.api.AddComment(ctx, postID, in)
	if err != nil {
		return a.postError(err)
	}
	a.store.Dispatch(Action{Type: AddComment, Payload: comments})
	return nil
}

// RemoveComment removes one of the caller's comments.
func (a *Actions) RemoveComment(ctx context.Context, postID, commentID string) error {
	if _, err := a.api.RemoveComment(ctx, postID, commentID); err != nil {
		return a.postError(err)
	}
	a.store.Dispatch(Action{Type: RemoveComment, Payload: commentID})
	return nil
}
