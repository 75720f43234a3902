package main

import (
	"context"
	"liveblog/broker"
	"liveblog/handlers"
	"liveblog/notify"
	"liveblog/services"
	"liveblog/storage"
	"liveblog/storage/in_memory"
	"liveblog/storage/persistent"
	"liveblog/storage/persistent_cached"
	"liveblog/utils"
	"net/http"
	"time"

	"github.com/RichardKnop/machinery/v1/log"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/motemen/go-loghttp/global"
)

type StorageMode string

const (
	InMemory       StorageMode = "inmemory"
	Mongo          StorageMode = "mongo"
	MongoWithCache StorageMode = "cached"
)

type AppMode string

const (
	ServerMode AppMode = "server"
	WorkerMode AppMode = "worker"
)

type NotifyMode string

const (
	NotifyLog       NotifyMode = "log"
	NotifyRedis     NotifyMode = "redis"
	NotifyMachinery NotifyMode = "machinery"
)

func CreateStorage(cfg *utils.Config) storage.Storage {
	mode := StorageMode(cfg.StorageMode)
	if mode == InMemory {
		return in_memory.CreateInMemoryStorage()
	}
	if mode != Mongo && mode != MongoWithCache {
		panic("Invalid 'STORAGE_MODE'")
	}
	if cfg.MongoUrl == "" {
		panic("'MONGO_URL' not specified")
	}
	if cfg.MongoDbName == "" {
		panic("'MONGO_DBNAME' not specified")
	}
	persistentStorage := persistent.CreateMongoStorage(cfg.MongoUrl, cfg.MongoDbName)
	if mode == Mongo {
		return persistentStorage
	}
	if cfg.RedisUrl == "" {
		panic("'REDIS_URL' was not specified for 'cached' STORAGE_MODE")
	}
	return persistent_cached.CreatePersistentStorageCachedWithRedis(persistentStorage, cfg.RedisUrl, cfg.CacheTTL)
}

func redisDelivery(cfg *utils.Config) notify.Sink {
	if cfg.RedisUrl == "" {
		panic("'REDIS_URL' was not specified for redis notifications")
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisUrl})
	return notify.NewRedisSink(client, cfg.NotifyChannel)
}

// CreateSinks picks where the server's notifications go. Every mode logs.
func CreateSinks(cfg *utils.Config) []notify.Sink {
	sinks := []notify.Sink{notify.LogSink{}}
	switch NotifyMode(cfg.NotifyMode) {
	case NotifyLog:
	case NotifyRedis:
		sinks = append(sinks, redisDelivery(cfg))
	case NotifyMachinery:
		taskSink, err := broker.NewTaskSink(cfg.BrokerUrl)
		if err != nil {
			panic("Failed to start machinery broker: " + err.Error())
		}
		sinks = append(sinks, taskSink)
	default:
		panic("Invalid 'NOTIFY_MODE'")
	}
	return sinks
}

// CreateHandler routes the API onto services built over store.
func CreateHandler(store storage.Storage, notifications chan<- notify.Notification) http.Handler {
	r := mux.NewRouter()

	handler := &handlers.HTTPHandler{
		Storage:   store,
		Posts:     services.NewPosts(store, notifications),
		BlogPosts: services.NewBlogPosts(store),
		Versions:  services.NewPostVersions(store),
	}
	blogs := func(next http.HandlerFunc) http.HandlerFunc {
		return handler.Authorized(services.PrivilegeBlogs, next)
	}
	archive := func(next http.HandlerFunc) http.HandlerFunc {
		return handler.Authorized(services.PrivilegeArchive, next)
	}

	r.HandleFunc("/maintenance/ping", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/posts", blogs(handler.HandleGetPosts)).Methods("GET")
	api.HandleFunc("/posts", blogs(handler.HandleCreatePost)).Methods("POST")
	api.HandleFunc("/posts/{postId:[a-f0-9]{24}}", blogs(handler.HandleGetPost)).Methods("GET")
	api.HandleFunc("/posts/{postId:[a-f0-9]{24}}", blogs(handler.HandlePatchPost)).Methods("PATCH")
	api.HandleFunc("/posts/{postId:[a-f0-9]{24}}", blogs(handler.HandleDeletePost)).Methods("DELETE")
	api.HandleFunc("/posts/{postId:[a-f0-9]{24}}/versions", blogs(handler.HandleGetPostVersions)).Methods("GET")
	api.HandleFunc("/blogs", blogs(handler.HandleCreateBlog)).Methods("POST")
	api.HandleFunc("/blogs/{blogId:[a-f0-9]{24}}", blogs(handler.HandleGetBlog)).Methods("GET")
	api.HandleFunc("/blogs/{blogId:[a-f0-9]{24}}/posts", blogs(handler.HandleGetBlogPosts)).Methods("GET")
	api.HandleFunc("/items", archive(handler.HandleCreateItem)).Methods("POST")
	api.HandleFunc("/items/{itemId:[a-f0-9]{24}}", archive(handler.HandleGetItem)).Methods("GET")

	return r
}

func CreateServer(cfg *utils.Config, notifications chan<- notify.Notification) *http.Server {
	return &http.Server{
		Handler:      CreateHandler(CreateStorage(cfg), notifications),
		Addr:         "0.0.0.0:" + cfg.ServerPort,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
}

func main() {
	cfg := utils.LoadConfig()
	switch AppMode(cfg.AppMode) {
	case ServerMode:
		notifications := make(chan notify.Notification, notify.DefaultBufferSize)
		dispatcher := notify.NewDispatcher(notifications, CreateSinks(cfg)...)
		go dispatcher.Run(context.Background())

		srv := CreateServer(cfg, notifications)
		log.INFO.Printf("Start serving on %s", srv.Addr)
		log.FATAL.Fatal(srv.ListenAndServe())
	case WorkerMode:
		log.INFO.Printf("Start worker on %s", cfg.BrokerUrl)
		log.FATAL.Fatal(broker.CreateWorker(cfg.BrokerUrl, redisDelivery(cfg)))
	default:
		panic("Invalid 'APP_MODE'")
	}
}
