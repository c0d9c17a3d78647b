package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fpang/storycam/internal/chat"
	"github.com/fpang/storycam/internal/cli"
	"github.com/fpang/storycam/internal/frame"
	"github.com/fpang/storycam/internal/logging"
	"github.com/fpang/storycam/internal/narrator"
	"github.com/fpang/storycam/internal/prefs"
	"github.com/fpang/storycam/internal/render"
	"github.com/fpang/storycam/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

// CLI flags
var (
	imageFlag      string
	captureCmdFlag string
	mirrorFlag     bool
	modelFlag      string
	hintFlag       string
	voiceFlag      string
	rateFlag       float64
	speakCmdFlag   string
	voicesCmdFlag  string
	playCmdFlag    string
	outFlag        string
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "storycam",
	Short: "AI storyteller for your camera",
	Long: `Storycam captures a photo from your webcam (or takes one from disk), asks
Gemini what it sees, and streams back a short story about it rendered as
markdown in your terminal. Detected objects are revealed one by one with
their positions on the frame, and once the story has fully arrived it is
read aloud through your system's speech synthesizer, led in by a small
synthesized chime.

Examples:
  storycam --capture-cmd "ffmpeg -f v4l2 -i /dev/video0 -frames:v 1 -f image2 -" --mirror
  storycam --image holiday.jpg --hint "make it a ghost story"
  storycam -i cat.png --voice Samantha --rate 1.2 -o annotated.jpg
  storycam  # no camera command and no image: opens a file picker`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Image file to tell a story about (skips camera capture)")
	rootCmd.Flags().StringVar(&captureCmdFlag, "capture-cmd", "", "Command that writes one still frame to stdout (e.g. 'ffmpeg -f v4l2 -i /dev/video0 -frames:v 1 -f image2 -')")
	rootCmd.Flags().BoolVar(&mirrorFlag, "mirror", false, "Treat the camera as a selfie view: label positions and the annotated output are flipped to match")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", chat.GetModelName(), "Gemini model to use (e.g., gemini-3-flash-preview, gemini-2.5-pro)")
	rootCmd.Flags().StringVar(&hintFlag, "hint", "", "Optional steer for the story (e.g. 'make it a ghost story')")
	rootCmd.Flags().StringVar(&voiceFlag, "voice", "", "Narration voice name; saved as the preference for future runs")
	rootCmd.Flags().Float64Var(&rateFlag, "rate", 0, "Narration speech rate; saved as the preference for future runs")
	rootCmd.Flags().StringVar(&speakCmdFlag, "speak-cmd", "storycam-say", "Speech synthesis command; utterance arrives as JSON on stdin")
	rootCmd.Flags().StringVar(&voicesCmdFlag, "voices-cmd", "storycam-say --list", "Command listing available voices, one 'name<TAB>language' per line")
	rootCmd.Flags().StringVar(&playCmdFlag, "play-cmd", "", "Audio player for the narration chime (e.g. 'aplay -q'); empty disables the chime")
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write the captured frame with label overlays to this file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
	start := time.Now()

	p, err := prefs.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load preferences, continuing with defaults")
		p = &prefs.Prefs{}
	}
	applyPrefOverrides(p)

	ctx, client := cli.InitGeminiClient(modelFlag)

	engine, err := narrator.NewExecEngine(speakCmdFlag, voicesCmdFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure speech engine")
	}
	chime, err := narrator.NewChime(playCmdFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure chime player")
	}
	view, err := render.NewStoryView(os.Stdout, 80)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize markdown renderer")
	}

	// The overlay writes through the story view's pin writer so revealed
	// labels stay on screen across fragment repaints.
	controller := session.New(
		&geminiLabeler{client: client, model: modelFlag},
		&geminiStoryteller{client: client, model: modelFlag, hint: hintFlag},
		view,
		render.NewOverlay(view.PinWriter()),
		&chimedSpeaker{narrator: narrator.New(engine, p), chime: chime},
	)

	logging.NewStartupLogger("storycam").
		Command("capture", captureCmdFlag).
		Command("speak", speakCmdFlag).
		Command("play", playCmdFlag).
		Feature("mirror", mirrorFlag).
		Feature("chime", playCmdFlag != "").
		Feature("annotated_output", outFlag != "").
		Config("model", modelFlag).
		Config("voice", p.VoiceName).
		Config("prefs_path", p.Path()).
		InitDuration(time.Since(start)).
		Log()

	grabber := buildGrabber()

	for {
		f, err := acquireFrame(ctx, &grabber)
		if err != nil {
			if errors.Is(err, cli.ErrPickerCanceled) {
				log.Info().Msg("No image selected, exiting")
				return
			}
			log.Fatal().Err(err).Msg("failed to acquire a frame")
		}

		if err := controller.Capture(ctx, f); err != nil {
			log.Error().Err(err).Msg("Capture failed, back to live")
		} else if outFlag != "" {
			if err := render.WriteAnnotated(f, controller.Labels(), outFlag); err != nil {
				log.Warn().Err(err).Str("path", outFlag).Msg("Failed to write annotated frame")
			} else {
				log.Info().Str("path", outFlag).Msg("Annotated frame written")
			}
		}

		// A fixed input file makes the loop pointless: one story and done.
		if imageFlag != "" || !promptCaptureAnother() {
			return
		}
		if err := controller.Reset(); err != nil {
			log.Fatal().Err(err).Msg("failed to reset session")
		}
	}
}

// applyPrefOverrides persists --voice and --rate so later runs keep them.
func applyPrefOverrides(p *prefs.Prefs) {
	if voiceFlag != "" {
		if err := p.SetVoiceName(voiceFlag); err != nil {
			log.Warn().Err(err).Msg("Failed to save voice preference")
		}
	}
	if rateFlag > 0 {
		if err := p.SetSpeechRate(rateFlag); err != nil {
			log.Warn().Err(err).Msg("Failed to save speech rate preference")
		}
	}
}

// buildGrabber parses the capture command, if one was given. A bad template
// downgrades to file selection rather than aborting.
func buildGrabber() *frame.Grabber {
	if captureCmdFlag == "" {
		return nil
	}
	g, err := frame.NewGrabber(captureCmdFlag)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid capture command, falling back to file selection")
		return nil
	}
	return g
}

// acquireFrame produces the next frame: the --image file, a camera grab, or a
// picked file. A camera that stops answering downgrades to the picker for the
// rest of the run instead of failing the session.
func acquireFrame(ctx context.Context, grabber **frame.Grabber) (*frame.Frame, error) {
	if imageFlag != "" {
		return frame.LoadFile(imageFlag)
	}

	if *grabber != nil {
		f, err := (*grabber).Grab(ctx, mirrorFlag)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, frame.ErrCameraUnavailable) {
			return nil, err
		}
		log.Warn().Err(err).Msg("Camera unavailable, falling back to file selection")
		*grabber = nil
	}

	return pickFrameUntilLoadable(cli.PickImageFile)
}

// pickFrameUntilLoadable keeps the session alive across bad file picks: an
// undecodable selection is logged and the dialog reopens. Only cancelling
// the dialog (or the dialog itself failing) ends the attempt.
func pickFrameUntilLoadable(pick func() (string, error)) (*frame.Frame, error) {
	for {
		path, err := pick()
		if err != nil {
			return nil, err
		}
		f, err := frame.LoadFile(path)
		if err == nil {
			return f, nil
		}
		log.Warn().Err(err).Str("path", path).Msg("Could not load the selected file, pick another")
	}
}

// promptCaptureAnother asks whether to go around again. Anything but an
// explicit yes ends the run.
func promptCaptureAnother() bool {
	fmt.Print("\nCapture another? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}

// geminiLabeler adapts the labeling request to the session's Labeler port.
type geminiLabeler struct {
	client *genai.Client
	model  string
}

func (l *geminiLabeler) DetectLabels(ctx context.Context, imageData []byte, mimeType string) []chat.Label {
	return chat.DetectLabels(ctx, l.client, l.model, imageData, mimeType)
}

// geminiStoryteller adapts the streaming story request to the session's
// Storyteller port, carrying the optional --hint steer.
type geminiStoryteller struct {
	client *genai.Client
	model  string
	hint   string
}

func (s *geminiStoryteller) StreamStory(ctx context.Context, imageData []byte, mimeType string, onFragment func(string)) (string, error) {
	return chat.StreamStory(ctx, s.client, s.model, imageData, mimeType, s.hint, onFragment)
}

// chimedSpeaker plays the lead-in chime before handing the story to the
// narrator.
type chimedSpeaker struct {
	narrator *narrator.Narrator
	chime    *narrator.Chime
}

func (s *chimedSpeaker) Speak(ctx context.Context, text string) {
	s.chime.Play(ctx)
	s.narrator.Speak(ctx, text)
}

func (s *chimedSpeaker) Wait() { s.narrator.Wait() }
func (s *chimedSpeaker) Stop() { s.narrator.Stop() }
