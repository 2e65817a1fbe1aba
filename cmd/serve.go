package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shuttlecast/cache"
	"shuttlecast/config"
	"shuttlecast/core/artwork"
	"shuttlecast/core/media"
	"shuttlecast/core/utils"
	"shuttlecast/db"
	"shuttlecast/logger"
	"shuttlecast/model"
	"shuttlecast/repository"
	"shuttlecast/server"
	"shuttlecast/storage"

	"github.com/spf13/cobra"
)

var (
	serveAudio       string
	serveImage       string
	serveImageObject string
	serveImageURL    string
	serveTrackID     int64
	serveEmbeddedArt bool
	serveWatch       bool
	serveHost        string
	servePort        int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 cast 服务器",
	Long: `在回环地址上提供当前音频文件 (/audio) 与封面图片 (/image)，支持 Range 请求。
音频可以直接指定，也可以通过 --track-id 从曲库中解析；封面可以来自本地文件、URL、MinIO 对象或音频内嵌标签。`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveAudio, "audio", "", "path of the audio file to serve")
	f.StringVar(&serveImage, "image", "", "path of a local image to serve as artwork")
	f.StringVar(&serveImageURL, "image-url", "", "download artwork from a URL")
	f.StringVar(&serveImageObject, "image-object", "", "artwork object key in the MinIO bucket")
	f.Int64Var(&serveTrackID, "track-id", 0, "resolve audio and artwork from the track library")
	f.BoolVar(&serveEmbeddedArt, "embedded-art", false, "fall back to artwork embedded in the audio tags")
	f.BoolVar(&serveWatch, "watch", false, "re-register the audio file when it changes on disk")
	f.StringVar(&serveHost, "host", "", "loopback listen host (overrides CAST_HOST)")
	f.IntVar(&servePort, "port", 0, "listen port (overrides CAST_PORT)")
	rootCmd.AddCommand(serveCmd)
}

// resources is what the cast server will be pointed at.
type resources struct {
	audioPath string
	image     []byte
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if serveHost != "" {
		cfg.Cast.Host = serveHost
	}
	if servePort != 0 {
		cfg.Cast.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.InitLogger(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := resolveResources(ctx, cfg)
	if err != nil {
		return err
	}

	registry := media.NewRegistry()
	castServer := server.NewCastServer(cfg.Cast, registry, logger.L())
	castServer.SetAudio(res.audioPath)
	castServer.SetImage(res.image)

	if serveWatch && res.audioPath != "" {
		watcher, err := media.WatchAudio(registry, res.audioPath)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	if err := castServer.Start(); err != nil {
		return err
	}
	defer castServer.Stop()

	logger.Info("cast 服务器已启动",
		logger.String("audio", "http://"+castServer.Addr()+"/audio"),
		logger.String("image", "http://"+castServer.Addr()+"/image"),
		logger.Bool("hasAudio", registry.HasAudio()),
		logger.Bool("hasImage", registry.HasImage()))

	<-ctx.Done()
	logger.Info("收到退出信号，正在关闭 cast 服务器")
	return nil
}

// resolveResources 解析音频路径和封面。封面获取失败只记录日志，不阻止启动。
func resolveResources(ctx context.Context, cfg *config.Config) (resources, error) {
	res := resources{audioPath: serveAudio}
	imageObject := serveImageObject

	if serveTrackID != 0 {
		track, err := lookupTrack(ctx, cfg, serveTrackID)
		if err != nil {
			return res, err
		}
		if res.audioPath == "" {
			res.audioPath = track.FilePath
		}
		if imageObject == "" && serveImage == "" && serveImageURL == "" {
			imageObject = track.CoverArtPath
		}
	}

	switch {
	case serveImage != "":
		data, err := os.ReadFile(serveImage)
		if err != nil {
			logger.Warn("读取本地封面失败", logger.String("path", serveImage), logger.ErrorField(err))
			break
		}
		res.image = data
	case serveImageURL != "":
		data, err := utils.FetchBytes(ctx, serveImageURL, storage.MaxArtworkSize)
		if err != nil {
			logger.Warn("下载封面失败", logger.String("url", serveImageURL), logger.ErrorField(err))
			break
		}
		res.image = data
	case imageObject != "":
		data, err := fetchArtwork(ctx, cfg, imageObject)
		if err != nil {
			logger.Warn("获取远端封面失败", logger.String("key", imageObject), logger.ErrorField(err))
			break
		}
		res.image = data
	}

	if res.image == nil && serveEmbeddedArt && res.audioPath != "" {
		res.image = embeddedArtwork(res.audioPath)
	}
	return res, nil
}

// embeddedArtwork 读取音频文件内嵌的封面。图片流总是以 image/png 返回，
// 其他格式的封面会记录实际类型。
func embeddedArtwork(path string) []byte {
	pic, err := artwork.FromTags(path)
	if err != nil {
		logger.Warn("读取内嵌封面失败", logger.String("path", path), logger.ErrorField(err))
		return nil
	}
	if pic.MIMEType != "image/png" {
		logger.Info("内嵌封面不是 PNG，仍以 image/png 提供",
			logger.String("path", path),
			logger.String("mimeType", pic.MIMEType),
			logger.Int("dataSize", len(pic.Data)))
	}
	return pic.Data
}

func lookupTrack(ctx context.Context, cfg *config.Config, id int64) (*model.Track, error) {
	gdb, err := db.OpenGorm(cfg)
	if err != nil {
		return nil, err
	}
	defer db.CloseGorm(gdb)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	track, err := repository.NewGormTrackRepository(gdb).GetTrackByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !track.Playable() {
		return nil, fmt.Errorf("track %d has no playable file", id)
	}
	return track, nil
}

// fetchArtwork reads from MinIO, through the Redis cache when Redis is reachable.
func fetchArtwork(ctx context.Context, cfg *config.Config, key string) ([]byte, error) {
	store, err := storage.NewArtworkStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var source cache.ArtworkSource = store
	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis 不可用，跳过封面缓存", logger.ErrorField(err))
	} else {
		defer client.Close()
		source = cache.NewArtworkCache(client, store, cfg.ArtworkTTL)
	}

	data, err := source.GetArtwork(ctx, key)
	if errors.Is(err, storage.ErrArtworkNotFound) {
		return nil, fmt.Errorf("artwork %q does not exist in bucket %s: %w", key, store.Bucket(), err)
	}
	return data, err
}
