package client

import (
	"devconnect/internal/posts"
	"devconnect/internal/profiles"
	"devconnect/internal/users"
)

// ActionType names a state transition.
type ActionType string

const (
	RegisterSuccess ActionType = "REGISTER_SUCCESS"
	RegisterFail    ActionType = "REGISTER_FAIL"
	UserLoaded      ActionType = "USER_LOADED"
	AuthError       ActionType = "AUTH_ERROR"
	LoginSuccess    ActionType = "LOGIN_SUCCESS"
	LoginFail       ActionType = "LOGIN_FAIL"
	Logout          ActionType = "LOGOUT"
	AccountDeleted  ActionType = "ACCOUNT_DELETED"

	GetProfile    ActionType = "GET_PROFILE"
	GetProfiles   ActionType = "GET_PROFILES"
	ProfileError  ActionType = "PROFILE_ERROR"
	UpdateProfile ActionType = "UPDATE_PROFILE"
	ClearProfile  ActionType = "CLEAR_PROFILE"

	GetPosts      ActionType = "GET_POSTS"
	GetPost       ActionType = "GET_POST"
	PostError     ActionType = "POST_ERROR"
	AddPost       ActionType = "ADD_POST"
	DeletePost    ActionType = "DELETE_POST"
	UpdateLikes   ActionType = "UPDATE_LIKES"
	AddComment    ActionType = "ADD_COMMENT"
	RemoveComment ActionType = "REMOVE_COMMENT"
)

// Action is a dispatched transition. Payload types per action:
//
//	REGISTER_SUCCESS, LOGIN_SUCCESS  TokenPayload
//	USER_LOADED                      *users.User
//	GET_PROFILE, UPDATE_PROFILE      *profiles.Profile
//	GET_PROFILES                     []profiles.Profile
//	PROFILE_ERROR, POST_ERROR        *APIError
//	GET_POSTS                        []posts.Post
//	GET_POST, ADD_POST               *posts.Post
//	DELETE_POST, REMOVE_COMMENT      string (id)
//	UPDATE_LIKES                     LikesPayload
//	ADD_COMMENT                      []posts.Comment
type Action struct {
	Type    ActionType
	Payload any
}

// TokenPayload carries a freshly issued session token.
type TokenPayload struct {
	Token string
}

// LikesPayload carries the new likes of one post.
type LikesPayload struct {
	PostID string
	Likes  []posts.Like
}

// AuthState mirrors the session.
type AuthState struct {
	Token           string
	IsAuthenticated bool
	Loading         bool
	User            *users.User
}

// ProfileState mirrors fetched profiles.
type ProfileState struct {
	Profile  *profiles.Profile
	Profiles []profiles.Profile
	Loading  bool
	Error    *APIError
}

// PostState mirrors the feed.
type PostState struct {
	Posts   []posts.Post
	Post    *posts.Post
	Loading bool
	Error   *APIError
}

// State is the whole client-side mirror.
type State struct {
	Auth    AuthState
	Profile ProfileState
	Post    PostState
}

// InitialState is the state before any action, given a previously stored token.
func InitialState(token string) State {
	return State{
		Auth:    AuthState{Token: token, Loading: true},
		Profile: ProfileState{Profiles: []profiles.Profile{}, Loading: true},
		Post:    PostState{Posts: []posts.Post{}, Loading: true},
	}
}

// ReduceAuth applies a to the auth slice. It never mutates its input.
func ReduceAuth(s AuthState, a Action) AuthState {
	switch a.Type {
	case UserLoaded:
		user, _ := a.Payload.(*users.User)
		s.IsAuthenticated = true
		s.Loading = false
		s.User = user
	case RegisterSuccess, LoginSuccess:
		p, _ := a.Payload.(TokenPayload)
		s.Token = p.Token
		s.IsAuthenticated = true
		s.Loading = false
	case RegisterFail, AuthError, LoginFail, Logout, AccountDeleted:
		s.Token = ""
		s.IsAuthenticated = false
		s.Loading = false
		s.User = nil
	}
	return s
}

// ReduceProfile applies a to the profile slice. It never mutates its input.
func ReduceProfile(s ProfileState, a Action) ProfileState {
	switch a.Type {
	case GetProfile, UpdateProfile:
		s.Profile, _ = a.Payload.(*profiles.Profile)
		s.Loading = false
		s.Error = nil
	case GetProfiles:
		list, _ := a.Payload.([]profiles.Profile)
		s.Profiles = append([]profiles.Profile{}, list...)
		s.Loading = false
	case ProfileError:
		s.Error, _ = a.Payload.(*APIError)
		s.Profile = nil
		s.Loading = false
	case ClearProfile, Logout, AccountDeleted:
		s.Profile = nil
		s.Loading = false
	}
	return s
}

// ReducePost applies a to the post slice. It never mutates its input.
func ReducePost(s PostState, a Action) PostState {
	switch a.Type {
	case GetPosts:
		list, _ := a.Payload.([]posts.Post)
		s.Posts = append([]posts.Post{}, list...)
		s.Loading = false
	case GetPost:
		s.Post, _ = a.Payload.(*posts.Post)
		s.Loading = false
	case AddPost:
		if p, ok := a.Payload.(*posts.Post); ok && p != nil {
			s.Posts = append([]posts.Post{*p}, s.Posts...)
		}
		s.Loading = false
	case DeletePost:
		id, _ := a.Payload.(string)
		kept := make([]posts.Post, 0, len(s.Posts))
		for _, p := range s.Posts {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		s.Posts = kept
		s.Loading = false
	case UpdateLikes:
		p, _ := a.Payload.(LikesPayload)
		updated := make([]posts.Post, len(s.Posts))
		for i, post := range s.Posts {
			if post.ID == p.PostID {
				post.Likes = p.Likes
			}
			updated[i] = post
		}
		s.Posts = updated
		s.Loading = false
	case AddComment:
		comments, _ := a.Payload.([]posts.Comment)
		if s.Post != nil {
			post := *s.Post
			post.Comments = comments
			s.Post = &post
		}
		s.Loading = false
	case RemoveComment:
		id, _ := a.Payload.(string)
		if s.Post != nil {
			post := *s.Post
			kept := make([]posts.Comment, 0, len(post.Comments))
			for _, c := range post.Comments {
				if c.ID != id {
					kept = append(kept, c)
				}
			}
			post.Comments = kept
			s.Post = &post
		}
		s.Loading = false
	case PostError:
		s.Error, _ = a.Payload.(*APIError)
		s.Loading = false
	}
	return s
}

// Reduce applies a to every slice.
func Reduce(s State, a Action) State {
	return State{
		Auth:    ReduceAuth(s.Auth, a),
		Profile: ReduceProfile(s.Profile, a),
		Post:    ReducePost(s.Post, a),
	}
}
