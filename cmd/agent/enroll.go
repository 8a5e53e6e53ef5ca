package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/classmark/classmark/internal/domain"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Register reference faces from a directory of images",
	Long: `Walks a directory of face images and registers one reference
descriptor per image. File names must be "<student_id>_<anything>.jpg";
images in which no face is found are skipped and reported.`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("dir", "", "Directory of face images (required)")
	_ = enrollCmd.MarkFlagRequired("dir")
}

// studentIDFromFilename parses the "<id>_..." naming convention
func studentIDFromFilename(name string) (int64, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	idPart, _, _ := strings.Cut(base, "_")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("file name %q does not start with a student id", name)
	}
	return id, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embProvider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	client := newSyncClient(cfg)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read image directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".jpg", ".jpeg", ".png":
			images = append(images, entry.Name())
		}
	}
	if len(images) == 0 {
		return fmt.Errorf("no image files in %s", dir)
	}

	bar := progressbar.NewOptions(len(images),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	var enrolled, skipped, failed int
	var failures []string

	for _, name := range images {
		_ = bar.Add(1)

		studentID, err := studentIDFromFilename(name)
		if err != nil {
			failed++
			failures = append(failures, err.Error())
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			failed++
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		faces, err := embProvider.Represent(cmd.Context(), data)
		if err != nil {
			failed++
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if len(faces) == 0 {
			skipped++
			continue
		}

		// One reference per image: the most prominent face
		best := faces[0]
		for _, face := range faces[1:] {
			if face.Box.Area() > best.Box.Area() {
				best = face
			}
		}

		if err := client.RegisterFace(cmd.Context(), studentID, best.Descriptor); err != nil {
			if errors.Is(err, domain.ErrStudentNotFound) {
				failed++
				failures = append(failures, fmt.Sprintf("%s: student %d not on the roster", name, studentID))
				continue
			}
			return fmt.Errorf("register face for %s: %w", name, err)
		}
		enrolled++
	}

	fmt.Printf("\nEnrolled %d, skipped %d (no face), failed %d\n", enrolled, skipped, failed)
	for _, failure := range failures {
		fmt.Printf("  ! %s\n", failure)
	}

	return nil
}
