/*
go-pathfinder turns the raw output tensors of a YOLO11 object detection or
instance segmentation model into spoken obstacle alerts for a visually
impaired pedestrian.

A frame travels through the following stages, each living in its own
package:

	postprocess   decode the tensor, suppress duplicate boxes and
	              reconstruct segment masks
	distance      join each detection with a depth measurement from the
	              spatial sensing collaborator
	risk          pick the single most dangerous object and decide whether
	              an alert should be spoken, rate limited by a cooldown gate
	speech        arbitrate alert priority in front of a text to speech engine
	pipeline      drop or throttle frames and drive the stages above
	render        draw the current detections and distances onto a frame

Camera capture, model inference, spatial tracking and speech synthesis are
external and are reached only through small interfaces.

See example code and usage in the example subdirectory.
*/
package pathfinder
