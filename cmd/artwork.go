package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"shuttlecast/config"
	"shuttlecast/core/media"
	"shuttlecast/storage"

	"github.com/spf13/cobra"
)

var artworkCmd = &cobra.Command{
	Use:   "artwork",
	Short: "管理 MinIO 中的封面对象",
}

var artworkPutCmd = &cobra.Command{
	Use:   "put <key> <file>",
	Short: "上传本地图片作为封面对象",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, file := args[0], args[1]
		cfg := config.Load()

		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		store, err := storage.NewArtworkStore(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := store.EnsureBucket(ctx, cfg.MinioRegion); err != nil {
			return err
		}
		contentType := media.NewMimeResolver(cfg.Cast.MimeTypes).Resolve(file)
		if err := store.PutArtwork(ctx, key, data, contentType); err != nil {
			return err
		}
		fmt.Printf("uploaded %s (%d bytes, %s) to %s\n", key, len(data), contentType, store.Bucket())
		return nil
	},
}

var artworkGetCmd = &cobra.Command{
	Use:   "get <key> <file>",
	Short: "下载封面对象到本地文件",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, file := args[0], args[1]
		cfg := config.Load()

		store, err := storage.NewArtworkStore(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		data, err := store.GetArtwork(ctx, key)
		if err != nil {
			return err
		}
		if err := os.WriteFile(file, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("saved %s (%d bytes) to %s\n", key, len(data), file)
		return nil
	},
}

func init() {
	artworkCmd.AddCommand(artworkPutCmd, artworkGetCmd)
	rootCmd.AddCommand(artworkCmd)
}
